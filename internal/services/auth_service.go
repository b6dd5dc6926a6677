package services

import (
	"errors"
	"fmt"

	"heavyequip/internal/domain"
	"heavyequip/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

func (s *AuthService) ListUsers() ([]domain.User, error) {
	users, err := s.Users.List()
	return users, mapErr("list users", err)
}

// DeleteUser removes an account; admins cannot delete themselves.
func (s *AuthService) DeleteUser(actorID, userID string) error {
	if actorID == userID {
		return fmt.Errorf("delete user: %w", ErrConflict)
	}
	ok, err := s.Users.DeleteUserCascade(userID)
	return affected("delete user", ok, err)
}
