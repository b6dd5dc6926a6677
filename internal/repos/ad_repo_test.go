package repos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdSettersReportConstraintFailuresAsConflicts(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TRIGGER ads_locked BEFORE UPDATE ON ads
	  BEGIN SELECT RAISE(ABORT, 'FOREIGN KEY constraint failed'); END`)
	require.NoError(t, err)

	ads := NewAdRepo(db)
	setters := map[string]func() (bool, error){
		"status":   func() (bool, error) { return ads.SetStatus("ad-cat-320-2019", "sold") },
		"featured": func() (bool, error) { return ads.SetFeatured("ad-cat-320-2019", false) },
		"images":   func() (bool, error) { return ads.SetImages("ad-cat-320-2019", `[]`) },
	}
	for name, set := range setters {
		_, err := set()
		assert.ErrorIs(t, err, ErrConflict, name)
	}

	stores := NewStoreRepo(db)
	_, err = db.Exec(`CREATE TRIGGER stores_locked BEFORE UPDATE ON stores
	  BEGIN SELECT RAISE(ABORT, 'FOREIGN KEY constraint failed'); END`)
	require.NoError(t, err)
	_, err = stores.SetVerification("rocky-rentals", "verified")
	assert.ErrorIs(t, err, ErrConflict)
}
