package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"heavyequip/internal/cache"
	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/validate"
)

type StoreService struct {
	Stores    *repos.StoreRepo
	Ads       *repos.AdRepo
	Locations *repos.LocationRepo
	Cache     cache.Cache
}

func NewStoreService(stores *repos.StoreRepo, ads *repos.AdRepo, locs *repos.LocationRepo, c cache.Cache) *StoreService {
	return &StoreService{Stores: stores, Ads: ads, Locations: locs, Cache: c}
}

// StoreProfile is the public store page.
type StoreProfile struct {
	Store domain.Store    `json:"store"`
	Ads   []domain.AdView `json:"ads"`
}

func normalizeStore(st *domain.Store) {
	st.Name = strings.TrimSpace(st.Name)
	st.Slug = slugFor(st.Name, st.Slug)
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	st.Phone = strings.TrimSpace(st.Phone)
	st.Website = strings.TrimSpace(st.Website)
	if st.LocationID != nil && strings.TrimSpace(*st.LocationID) == "" {
		st.LocationID = nil
	}
}

// check validates st and that its location, when given, exists.
func (s *StoreService) check(st domain.Store) error {
	if err := check(st, st.Slug); err != nil {
		return err
	}
	errs := &validate.Errors{}
	if err := requireRef(errs, "location_id", st.LocationID, func(id string) error { _, err := s.Locations.Get(id); return err }); err != nil {
		return err
	}
	return errs.Err()
}

func (s *StoreService) List(verification string) ([]domain.Store, error) {
	stores, err := s.Stores.List(verification)
	return stores, mapErr("list stores", err)
}

func (s *StoreService) Get(id string) (domain.Store, error) {
	st, err := s.Stores.Get(id)
	return st, mapErr("store "+id, err)
}

// Profile returns a store and its active ads. Rejected stores are hidden.
func (s *StoreService) Profile(slug string, adLimit int) (StoreProfile, error) {
	st, err := s.Stores.BySlug(slug)
	if err != nil {
		return StoreProfile{}, mapErr("store "+slug, err)
	}
	if st.VerificationStatus == domain.StoreRejected {
		return StoreProfile{}, fmt.Errorf("store %s: %w", slug, ErrNotFound)
	}
	ads, err := s.Ads.ByStore(st.ID, adLimit)
	if err != nil {
		return StoreProfile{}, mapErr("store ads", err)
	}
	return StoreProfile{Store: st, Ads: ads}, nil
}

func (s *StoreService) Create(st domain.Store) (domain.Store, error) {
	normalizeStore(&st)
	if st.VerificationStatus == "" {
		st.VerificationStatus = domain.StorePending
	}
	if st.SubscriptionStatus == "" {
		st.SubscriptionStatus = domain.SubscriptionTrial
	}
	if err := s.check(st); err != nil {
		return st, err
	}
	st.ID = uuid.NewString()
	if err := s.Stores.Create(st); err != nil {
		return st, mapErr("create store", err)
	}
	return s.Get(st.ID)
}

func (s *StoreService) Update(id string, st domain.Store) (domain.Store, error) {
	st.ID = id
	normalizeStore(&st)
	if err := s.check(st); err != nil {
		return st, err
	}
	ok, err := s.Stores.Update(st)
	if err := affected("update store", ok, err); err != nil {
		return st, err
	}
	invalidateSearch(s.Cache)
	return s.Get(id)
}

// Delete refuses while the store still owns ads.
func (s *StoreService) Delete(id string) error {
	ok, err := s.Stores.Delete(id)
	return affected("delete store", ok, err)
}

func (s *StoreService) Verify(id, status string) error {
	switch status {
	case domain.StorePending, domain.StoreVerified, domain.StoreRejected:
	default:
		errs := &validate.Errors{}
		errs.Add("verification_status", "must be one of pending, verified, rejected")
		return errs
	}
	ok, err := s.Stores.SetVerification(id, status)
	if err := affected("verify store", ok, err); err != nil {
		return err
	}
	// verified=true searches depend on it
	invalidateSearch(s.Cache)
	return nil
}

func (s *StoreService) SetSubscription(id, status string) error {
	switch status {
	case domain.SubscriptionTrial, domain.SubscriptionActive, domain.SubscriptionExpired, domain.SubscriptionCancelled:
	default:
		errs := &validate.Errors{}
		errs.Add("subscription_status", "must be one of trial, active, expired, cancelled")
		return errs
	}
	ok, err := s.Stores.SetSubscription(id, status)
	return affected("set subscription", ok, err)
}

// SetImage points the store logo or banner at url.
func (s *StoreService) SetImage(id, which, url string) error {
	st, err := s.Get(id)
	if err != nil {
		return err
	}
	switch which {
	case "logo":
		st.LogoURL = url
	case "banner":
		st.BannerURL = url
	default:
		return fmt.Errorf("store image %q: %w", which, ErrNotFound)
	}
	ok, err := s.Stores.Update(st)
	if err := affected("set store image", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}
