package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wholesale/internal/domain/catalog"
	"wholesale/internal/normalize"
)

type referenceStore interface {
	ExistingSlugs(ctx context.Context, kind catalog.RefKind, slugs []string) ([]string, error)
	CreatePlaceholders(ctx context.Context, kind catalog.RefKind, refs []catalog.Placeholder) error
}

// Provisioner creates placeholder categories and brands for slugs a product
// file references before they exist.
type Provisioner struct {
	store   referenceStore
	picture string
	logger  *zap.SugaredLogger
}

func NewProvisioner(store referenceStore, placeholderPicture string, logger *zap.SugaredLogger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Provisioner{store: store, picture: placeholderPicture, logger: logger}
}

// EnsureReferences makes every slug exist in kind's table and returns the ones
// it created, in first-seen order. Any store failure is returned as is.
func (p *Provisioner) EnsureReferences(ctx context.Context, kind catalog.RefKind, slugs []string) ([]string, error) {
	wanted := distinct(slugs)
	if len(wanted) == 0 {
		return nil, nil
	}

	existing, err := p.store.ExistingSlugs(ctx, kind, wanted)
	if err != nil {
		return nil, fmt.Errorf("lookup existing %s: %w", kind, err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		have[s] = struct{}{}
	}

	var refs []catalog.Placeholder
	var created []string
	for _, s := range wanted {
		if _, ok := have[s]; ok {
			continue
		}
		refs = append(refs, catalog.Placeholder{
			Name:    normalize.TitleCaseFromSlug(s),
			Slug:    s,
			Picture: p.picture,
		})
		created = append(created, s)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	if err := p.store.CreatePlaceholders(ctx, kind, refs); err != nil {
		return nil, fmt.Errorf("provision %s: %w", kind, err)
	}
	p.logger.Infow("placeholders created", "kind", kind, "count", len(created), "slugs", created)
	return created, nil
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
