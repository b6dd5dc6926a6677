package services

import (
	"fmt"

	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
)

// SavedService keeps per-visitor bookmarks keyed by the sid cookie.
type SavedService struct {
	Repo *repos.SavedRepo
	Ads  *repos.AdRepo
}

func NewSavedService(r *repos.SavedRepo, ads *repos.AdRepo) *SavedService {
	return &SavedService{Repo: r, Ads: ads}
}

// Save bookmarks a public ad; anything else is reported as not found.
func (s *SavedService) Save(sessionID, adID string) error {
	ad, err := s.Ads.Get(adID)
	if err != nil {
		return mapErr("save ad", err)
	}
	if !ad.Public() {
		return fmt.Errorf("save ad %s: %w", adID, ErrNotFound)
	}
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return mapErr("save ad", s.Repo.Add(id, adID))
}

func (s *SavedService) Unsave(sessionID, adID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.Remove(id, adID)
}

func (s *SavedService) List(sessionID string) ([]domain.AdView, error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(id)
}
