package main

import (
	"errors"
	"fmt"

	"wholesale/internal/media"

	"github.com/cloudinary/cloudinary-go/v2"
)

// assetStore is a media.AssetStore that knows the prefix of the references it
// hands out, so the resolver can recognise them on re-import.
type assetStore interface {
	media.AssetStore
	Prefix() string
}

func newAssetStore(cfg mediaConfig) (assetStore, error) {
	switch cfg.backend {
	case "", "local":
		return media.NewLocalStore(cfg.publicDir), nil
	case "cloudinary":
		if cfg.cloudinaryURL == "" {
			return nil, errors.New("ASSET_BACKEND=cloudinary needs CLOUDINARY_URL")
		}
		cld, err := cloudinary.NewFromURL(cfg.cloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: %w", err)
		}
		return media.NewCloudinaryStore(&cld.Upload, cld.Config.Cloud.CloudName, cfg.cloudinaryFolder), nil
	}
	return nil, fmt.Errorf("unknown ASSET_BACKEND %q", cfg.backend)
}
