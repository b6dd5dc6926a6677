package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type StoreRepo struct{ db *sqlx.DB }

func NewStoreRepo(db *sqlx.DB) *StoreRepo { return &StoreRepo{db: db} }

const storeSelect = `
  SELECT s.id, s.name, s.slug, s.description, s.logo_url, s.banner_url, s.phone, s.email,
         s.website, s.location_id, s.verification_status, s.subscription_status,
         s.created_at, s.updated_at, l.city,
         (SELECT COUNT(*) FROM ads a WHERE a.store_id = s.id AND a.status = 'active') AS active_ads
  FROM stores s
  LEFT JOIN locations l ON l.id = s.location_id`

// List returns stores filtered by verification status (empty means all).
func (r *StoreRepo) List(verification string) ([]domain.Store, error) {
	out := []domain.Store{}
	q := storeSelect
	args := []any{}
	if verification != "" {
		q += ` WHERE s.verification_status = ?`
		args = append(args, verification)
	}
	err := r.db.Select(&out, q+` ORDER BY s.name`, args...)
	return out, err
}

func (r *StoreRepo) Get(id string) (domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, storeSelect+` WHERE s.id = ?`, id)
	return s, err
}

func (r *StoreRepo) BySlug(slug string) (domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, storeSelect+` WHERE LOWER(s.slug) = LOWER(?)`, slug)
	return s, err
}

func (r *StoreRepo) Create(s domain.Store) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO stores(id, name, slug, description, logo_url, banner_url, phone, email, website,
	    location_id, verification_status, subscription_status)
	  VALUES(:id, :name, :slug, :description, :logo_url, :banner_url, :phone, :email, :website,
	    :location_id, :verification_status, :subscription_status)
	`, s)
	return classify(err)
}

// Update rewrites the profile; verification and subscription have their own setters.
func (r *StoreRepo) Update(s domain.Store) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE stores SET
	    name = :name, slug = :slug, description = :description, logo_url = :logo_url,
	    banner_url = :banner_url, phone = :phone, email = :email, website = :website,
	    location_id = :location_id, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, s)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete fails with ErrConflict while the store still owns ads.
func (r *StoreRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *StoreRepo) SetVerification(id, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE stores SET verification_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *StoreRepo) SetSubscription(id, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE stores SET subscription_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
