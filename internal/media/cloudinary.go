package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudUploader is the part of the Cloudinary upload API the store uses;
// *uploader.API satisfies it.
type cloudUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

var versionSegmentRe = regexp.MustCompile(`^v[0-9]+$`)

// CloudinaryStore uploads assets to <folder>/<kind> and returns the secure
// delivery URL.
type CloudinaryStore struct {
	up        cloudUploader
	cloudName string
	folder    string
	now       func() time.Time
}

func NewCloudinaryStore(up cloudUploader, cloudName, folder string) *CloudinaryStore {
	return &CloudinaryStore{
		up:        up,
		cloudName: cloudName,
		folder:    strings.Trim(folder, "/"),
		now:       time.Now,
	}
}

// Prefix is the delivery URL prefix of the account.
func (s *CloudinaryStore) Prefix() string {
	return "https://res.cloudinary.com/" + s.cloudName + "/"
}

func (s *CloudinaryStore) Store(ctx context.Context, kind AssetKind, data []byte, _ string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty asset")
	}
	folder := string(kind)
	if s.folder != "" {
		folder = s.folder + "/" + folder
	}

	resp, err := s.up.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:    folder,
		PublicID:  newAssetName(s.now()),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) IsStored(ref string) bool {
	return strings.HasPrefix(ref, s.Prefix()) || strings.HasPrefix(ref, "http://res.cloudinary.com/"+s.cloudName+"/")
}

func (s *CloudinaryStore) Discard(ctx context.Context, ref string) error {
	if !s.IsStored(ref) {
		return nil
	}
	publicID, err := publicIDFromURL(ref)
	if err != nil {
		return err
	}
	resp, err := s.up.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}

// publicIDFromURL takes the path after "upload/", drops the version segment
// and the extension.
func publicIDFromURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 1 && versionSegmentRe.MatchString(rest[0]) {
			rest = rest[1:]
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}
	return "", errors.New("failed to extract public ID from URL")
}
