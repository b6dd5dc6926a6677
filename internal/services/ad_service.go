package services

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"heavyequip/internal/cache"
	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/search"
	"heavyequip/internal/validate"
)

// MaxImagesPerAd caps the gallery of one listing.
const MaxImagesPerAd = 20

type AdService struct {
	Ads    *repos.AdRepo
	Cats   *repos.CategoryRepo
	Brands *repos.BrandRepo
	Stores *repos.StoreRepo
	Cache  cache.Cache
}

func NewAdService(ads *repos.AdRepo, cats *repos.CategoryRepo, brands *repos.BrandRepo, stores *repos.StoreRepo, c cache.Cache) *AdService {
	return &AdService{Ads: ads, Cats: cats, Brands: brands, Stores: stores, Cache: c}
}

func (s *AdService) normalize(a *domain.Ad) {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = slugFor(a.Title, a.Slug)
	a.ListingType = strings.ToLower(strings.TrimSpace(a.ListingType))
	a.Condition = strings.ToLower(strings.TrimSpace(a.Condition))
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Currency == "" {
		a.Currency = "USD"
	}
	if a.ListingType == domain.ListingSale {
		a.RentalPeriod = ""
	}
	for _, p := range []**string{&a.SubCategoryID, &a.BrandID, &a.ModelID, &a.EngineID, &a.StoreID, &a.LocationID} {
		if *p != nil && strings.TrimSpace(**p) == "" {
			*p = nil
		}
	}
}

// check validates fields and that every referenced catalog row exists.
func (s *AdService) check(a domain.Ad) error {
	if err := validate.Struct(a); err != nil {
		return err
	}
	errs := &validate.Errors{}
	if a.Slug == "" {
		errs.Add("slug", "could not be derived from title; provide one")
	}
	if a.Price.Valid && a.Price.Decimal.IsNegative() {
		errs.Add("price", "must not be negative")
	}
	if a.ListingType == domain.ListingRent && a.RentalPeriod == "" {
		errs.Add("rental_period", "is required for rentals")
	}
	if _, err := s.Cats.Get(a.CategoryID); err != nil {
		if !isNotFound(err) {
			return mapErr("check category", err)
		}
		errs.Add("category_id", "does not exist")
	}
	refs := []struct {
		field string
		id    *string
		get   func(string) error
	}{
		{"sub_category_id", a.SubCategoryID, func(id string) error {
			sc, err := s.Cats.GetSub(id)
			if err == nil && sc.CategoryID != a.CategoryID {
				errs.Add("sub_category_id", "belongs to another category")
			}
			return err
		}},
		{"brand_id", a.BrandID, func(id string) error { _, err := s.Brands.Get(id); return err }},
		{"model_id", a.ModelID, func(id string) error {
			m, err := s.Brands.GetModel(id)
			if err == nil && a.BrandID != nil && m.BrandID != *a.BrandID {
				errs.Add("model_id", "belongs to another brand")
			}
			return err
		}},
		{"engine_id", a.EngineID, func(id string) error { _, err := s.Brands.GetEngine(id); return err }},
		{"store_id", a.StoreID, func(id string) error { _, err := s.Stores.Get(id); return err }},
	}
	for _, r := range refs {
		if err := requireRef(errs, r.field, r.id, r.get); err != nil {
			return err
		}
	}
	return errs.Err()
}

// uniqueSlug suffixes a short id when the slug is already used by another ad.
func (s *AdService) uniqueSlug(slug, id string) (string, error) {
	taken, err := s.Ads.SlugTaken(slug, id)
	if err != nil || !taken {
		return slug, err
	}
	return slug + "-" + strings.SplitN(id, "-", 2)[0], nil
}

func (s *AdService) Create(a domain.Ad) (domain.AdView, error) {
	s.normalize(&a)
	if a.Status == "" {
		a.Status = domain.AdPending
	}
	if err := s.check(a); err != nil {
		return domain.AdView{}, err
	}
	a.ID = uuid.NewString()
	a.ImagesJSON = "[]"
	slug, err := s.uniqueSlug(a.Slug, a.ID)
	if err != nil {
		return domain.AdView{}, mapErr("create ad", err)
	}
	a.Slug = slug
	if err := s.Ads.Create(a); err != nil {
		return domain.AdView{}, mapErr("create ad", err)
	}
	invalidateSearch(s.Cache)
	return s.Get(a.ID)
}

// Update replaces the editable fields. Images and views are kept.
func (s *AdService) Update(id string, a domain.Ad) (domain.AdView, error) {
	cur, err := s.Get(id)
	if err != nil {
		return domain.AdView{}, err
	}
	a.ID = id
	s.normalize(&a)
	if a.Status == "" {
		a.Status = cur.Status
	}
	if err := s.check(a); err != nil {
		return domain.AdView{}, err
	}
	a.ImagesJSON = cur.ImagesJSON
	if a.Slug, err = s.uniqueSlug(a.Slug, id); err != nil {
		return domain.AdView{}, mapErr("update ad", err)
	}
	ok, err := s.Ads.Update(a)
	if err := affected("update ad", ok, err); err != nil {
		return domain.AdView{}, err
	}
	invalidateSearch(s.Cache)
	return s.Get(id)
}

// Get returns an ad in any status (admin view).
func (s *AdService) Get(id string) (domain.AdView, error) {
	a, err := s.Ads.Get(id)
	return a, mapErr("ad "+id, err)
}

// PublicBySlug hides ads that are not active or whose store was rejected.
func (s *AdService) PublicBySlug(slug string) (domain.AdView, error) {
	a, err := s.Ads.BySlug(slug)
	if err != nil {
		return a, mapErr("ad "+slug, err)
	}
	if !a.Public() {
		return domain.AdView{}, fmt.Errorf("ad %s: %w", slug, ErrNotFound)
	}
	return a, nil
}

// View is PublicBySlug plus a view count bump.
func (s *AdService) View(slug string) (domain.AdView, error) {
	a, err := s.PublicBySlug(slug)
	if err != nil {
		return a, err
	}
	if err := s.Ads.IncrementViews(a.ID); err == nil {
		a.Views++
	}
	return a, nil
}

func (s *AdService) SetStatus(id, status string) error {
	switch status {
	case domain.AdDraft, domain.AdPending, domain.AdActive, domain.AdSold, domain.AdArchived:
	default:
		errs := &validate.Errors{}
		errs.Add("status", "must be one of draft, pending, active, sold, archived")
		return errs
	}
	ok, err := s.Ads.SetStatus(id, status)
	if err := affected("set ad status", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

func (s *AdService) Feature(id string, featured bool) error {
	ok, err := s.Ads.SetFeatured(id, featured)
	if err := affected("feature ad", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

func (s *AdService) Delete(id string) error {
	ok, err := s.Ads.Delete(id)
	if err := affected("delete ad", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

func (s *AdService) ListAdmin(status string, page, limit int) ([]domain.AdView, search.Pagination, error) {
	page, limit = pageWindow(page, limit)
	ads, total, err := s.Ads.ListAdmin(status, limit, (page-1)*limit)
	if err != nil {
		return nil, search.Pagination{}, mapErr("list ads", err)
	}
	return ads, search.NewPagination(page, limit, total), nil
}

func (s *AdService) Featured(limit int) ([]domain.AdView, error) {
	ads, err := s.Ads.Featured(limit)
	return ads, mapErr("featured ads", err)
}

func (s *AdService) Latest(limit int) ([]domain.AdView, error) {
	ads, err := s.Ads.Latest(limit)
	return ads, mapErr("latest ads", err)
}

// AddImage appends url to the ad gallery.
func (s *AdService) AddImage(id, url string) error {
	a, err := s.Get(id)
	if err != nil {
		return err
	}
	imgs := a.Images()
	if len(imgs) >= MaxImagesPerAd {
		errs := &validate.Errors{}
		errs.Add("file", fmt.Sprintf("an ad holds at most %d images", MaxImagesPerAd))
		return errs
	}
	return s.setImages(id, append(imgs, url))
}

func (s *AdService) RemoveImage(id, url string) error {
	a, err := s.Get(id)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(a.Images()))
	for _, img := range a.Images() {
		if img != url {
			kept = append(kept, img)
		}
	}
	return s.setImages(id, kept)
}

func (s *AdService) setImages(id string, imgs []string) error {
	if imgs == nil {
		imgs = []string{}
	}
	b, err := json.Marshal(imgs)
	if err != nil {
		return err
	}
	ok, err := s.Ads.SetImages(id, string(b))
	if err := affected("set ad images", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// pageWindow clamps admin paging to the same bounds as public search.
func pageWindow(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > search.MaxLimit {
		limit = search.MaxLimit
	}
	return page, limit
}
