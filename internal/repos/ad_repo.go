package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AdRepo struct{ db *sqlx.DB }

func NewAdRepo(db *sqlx.DB) *AdRepo { return &AdRepo{db: db} }

func (r *AdRepo) Get(id string) (domain.AdView, error) {
	var a domain.AdView
	err := r.db.Get(&a, `SELECT * FROM ads_with_all_joins WHERE id = ?`, id)
	return a, err
}

func (r *AdRepo) BySlug(slug string) (domain.AdView, error) {
	var a domain.AdView
	err := r.db.Get(&a, `SELECT * FROM ads_with_all_joins WHERE LOWER(slug) = LOWER(?)`, slug)
	return a, err
}

// SlugTaken reports whether another ad already uses slug.
func (r *AdRepo) SlugTaken(slug, exceptID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM ads WHERE LOWER(slug) = LOWER(?) AND id != ?`, slug, exceptID)
	return n > 0, err
}

func (r *AdRepo) Create(a domain.Ad) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO ads(id, title, slug, description, listing_type, condition, price, currency,
	    rental_period, year, hours, category_id, sub_category_id, brand_id, model_id, engine_id,
	    store_id, location_id, images_json, status, featured)
	  VALUES(:id, :title, :slug, :description, :listing_type, :condition, :price, :currency,
	    :rental_period, :year, :hours, :category_id, :sub_category_id, :brand_id, :model_id, :engine_id,
	    :store_id, :location_id, :images_json, :status, :featured)
	`, a)
	return classify(err)
}

func (r *AdRepo) Update(a domain.Ad) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE ads SET
	    title = :title, slug = :slug, description = :description, listing_type = :listing_type,
	    condition = :condition, price = :price, currency = :currency, rental_period = :rental_period,
	    year = :year, hours = :hours, category_id = :category_id, sub_category_id = :sub_category_id,
	    brand_id = :brand_id, model_id = :model_id, engine_id = :engine_id, store_id = :store_id,
	    location_id = :location_id, images_json = :images_json, status = :status, featured = :featured,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, a)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AdRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM ads WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AdRepo) SetStatus(id, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE ads SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AdRepo) SetFeatured(id string, featured bool) (bool, error) {
	res, err := r.db.Exec(`UPDATE ads SET featured = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, featured, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AdRepo) SetImages(id, imagesJSON string) (bool, error) {
	res, err := r.db.Exec(`UPDATE ads SET images_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, imagesJSON, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AdRepo) IncrementViews(id string) error {
	_, err := r.db.Exec(`UPDATE ads SET views = views + 1 WHERE id = ?`, id)
	return err
}

// ListAdmin pages through ads of any status, newest first. Empty status means all.
func (r *AdRepo) ListAdmin(status string, limit, offset int) ([]domain.AdView, int, error) {
	where := `1 = 1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM ads_with_all_joins WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	out := []domain.AdView{}
	err := r.db.Select(&out, `
	  SELECT * FROM ads_with_all_joins
	  WHERE `+where+`
	  ORDER BY datetime(created_at) DESC, id
	  LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

func (r *AdRepo) Featured(limit int) ([]domain.AdView, error) {
	out := []domain.AdView{}
	err := r.db.Select(&out, `
	  SELECT * FROM ads_with_all_joins
	  WHERE `+publicAd+` AND featured = 1
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, limit)
	return out, err
}

func (r *AdRepo) Latest(limit int) ([]domain.AdView, error) {
	out := []domain.AdView{}
	err := r.db.Select(&out, `
	  SELECT * FROM ads_with_all_joins
	  WHERE `+publicAd+`
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, limit)
	return out, err
}

func (r *AdRepo) ByStore(storeID string, limit int) ([]domain.AdView, error) {
	out := []domain.AdView{}
	err := r.db.Select(&out, `
	  SELECT * FROM ads_with_all_joins
	  WHERE `+publicAd+` AND store_id = ?
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, storeID, limit)
	return out, err
}
