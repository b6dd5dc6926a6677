package repos

import (
	"time"

	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SavedRepo keeps the ads a browser session has bookmarked.
type SavedRepo struct{ db *sqlx.DB }

func NewSavedRepo(db *sqlx.DB) *SavedRepo { return &SavedRepo{db: db} }

func (r *SavedRepo) Ensure(sessionID string) (string, error) {
	var id string
	if err := r.db.Get(&id, `SELECT id FROM saved_lists WHERE session_id=?`, sessionID); err == nil {
		return id, nil
	}
	_, err := r.db.Exec(`INSERT INTO saved_lists(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().UTC().Format(time.DateTime))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *SavedRepo) Add(listID, adID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO saved_items(list_id, ad_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(list_id, ad_id) DO NOTHING
	`, listID, adID)
	return classify(err)
}

func (r *SavedRepo) Remove(listID, adID string) error {
	_, err := r.db.Exec(`DELETE FROM saved_items WHERE list_id=? AND ad_id=?`, listID, adID)
	return err
}

// List returns saved ads in the order they were saved. Ads that went
// inactive stay listed so the visitor sees they are gone.
func (r *SavedRepo) List(listID string) ([]domain.AdView, error) {
	out := []domain.AdView{}
	err := r.db.Select(&out, `
	  SELECT v.* FROM saved_items si
	  JOIN ads_with_all_joins v ON v.id = si.ad_id
	  WHERE si.list_id = ?
	  ORDER BY si.created_at, v.id
	`, listID)
	return out, err
}
