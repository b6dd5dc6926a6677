package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"heavyequip/internal/storage"
	"heavyequip/internal/validate"
)

const MaxUploadBytes = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Media targets: where an uploaded image ends up.
const (
	TargetAd          = "ad"
	TargetStoreLogo   = "store_logo"
	TargetStoreBanner = "store_banner"
	TargetBlogCover   = "blog_cover"
)

type MediaService struct {
	Store  storage.Store
	Ads    *AdService
	Stores *StoreService
	Blogs  *BlogService
}

type Upload struct {
	Target  string `json:"target"`
	OwnerID string `json:"owner_id"`
	URL     string `json:"url"`
	Key     string `json:"key"`
}

// Sniff checks size and content (not the client-declared type) and returns
// the detected image type.
func Sniff(body []byte) (string, error) {
	errs := &validate.Errors{}
	switch {
	case len(body) == 0:
		errs.Add("file", "is required")
	case len(body) > MaxUploadBytes:
		errs.Add("file", fmt.Sprintf("must be at most %d MiB", MaxUploadBytes>>20))
	}
	if !errs.Empty() {
		return "", errs
	}
	ct := http.DetectContentType(body)
	if _, ok := imageExt[ct]; !ok {
		errs.Add("file", "must be a JPEG, PNG or WebP image")
		return "", errs
	}
	return ct, nil
}

// Upload stores body and attaches the resulting URL to its owner. A failed
// attach removes the stored object again.
func (s *MediaService) Upload(ctx context.Context, target, ownerID string, body []byte) (Upload, error) {
	ct, err := Sniff(body)
	if err != nil {
		return Upload{}, err
	}
	if _, ok := validate.ID(ownerID); !ok {
		errs := &validate.Errors{}
		errs.Add("owner_id", "is required")
		return Upload{}, errs
	}
	var attach func(url string) error
	var folder string
	switch target {
	case TargetAd:
		folder, attach = "ads", func(url string) error { return s.Ads.AddImage(ownerID, url) }
	case TargetStoreLogo:
		folder, attach = "stores", func(url string) error { return s.Stores.SetImage(ownerID, "logo", url) }
	case TargetStoreBanner:
		folder, attach = "stores", func(url string) error { return s.Stores.SetImage(ownerID, "banner", url) }
	case TargetBlogCover:
		folder, attach = "blogs", func(url string) error { return s.Blogs.SetCover(ownerID, url) }
	default:
		errs := &validate.Errors{}
		errs.Add("target", "must be one of ad, store_logo, store_banner, blog_cover")
		return Upload{}, errs
	}

	key := strings.Join([]string{folder, ownerID, uuid.NewString() + imageExt[ct]}, "/")
	url, err := s.Store.Put(ctx, key, ct, body)
	if err != nil {
		return Upload{}, fmt.Errorf("store upload: %w", err)
	}
	if err := attach(url); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Upload{}, err
	}
	return Upload{Target: target, OwnerID: ownerID, URL: url, Key: key}, nil
}
