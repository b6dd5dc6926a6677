package services

import (
	"database/sql"
	"errors"
	"fmt"

	"heavyequip/internal/repos"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicts with an existing record")
	ErrInvalidTransition = errors.New("status change not allowed")
)

// mapErr folds driver errors into the sentinels handlers translate to statuses.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repos.ErrConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// affected turns an (ok, err) repo result into ErrNotFound when no row matched.
func affected(op string, ok bool, err error) error {
	if err != nil {
		return mapErr(op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound)
}
