package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

// BrandRepo covers brands and the models and engines hanging off them.
type BrandRepo struct{ db *sqlx.DB }

func NewBrandRepo(db *sqlx.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) List() ([]domain.Brand, error) {
	out := []domain.Brand{}
	err := r.db.Select(&out, `
	  SELECT b.id, b.name, b.slug, b.logo_url, b.created_at, b.updated_at,
	         (SELECT COUNT(*) FROM ads_with_all_joins a WHERE a.brand_id = b.id AND `+publicAd+`) AS ad_count
	  FROM brands b
	  ORDER BY b.name
	`)
	return out, err
}

func (r *BrandRepo) Get(id string) (domain.Brand, error) {
	var b domain.Brand
	err := r.db.Get(&b, `SELECT id, name, slug, logo_url, created_at, updated_at, 0 AS ad_count FROM brands WHERE id = ?`, id)
	return b, err
}

func (r *BrandRepo) Create(b domain.Brand) error {
	_, err := r.db.NamedExec(`INSERT INTO brands(id, name, slug, logo_url) VALUES(:id, :name, :slug, :logo_url)`, b)
	return classify(err)
}

func (r *BrandRepo) Update(b domain.Brand) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE brands SET name = :name, slug = :slug, logo_url = :logo_url, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, b)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *BrandRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- models ----------

const modelCols = `id, brand_id, sub_category_id, name, slug, created_at, updated_at`

func (r *BrandRepo) Models(brandID string) ([]domain.Model, error) {
	out := []domain.Model{}
	q := `SELECT ` + modelCols + ` FROM models`
	args := []any{}
	if brandID != "" {
		q += ` WHERE brand_id = ?`
		args = append(args, brandID)
	}
	err := r.db.Select(&out, q+` ORDER BY name`, args...)
	return out, err
}

func (r *BrandRepo) GetModel(id string) (domain.Model, error) {
	var m domain.Model
	err := r.db.Get(&m, `SELECT `+modelCols+` FROM models WHERE id = ?`, id)
	return m, err
}

func (r *BrandRepo) CreateModel(m domain.Model) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO models(id, brand_id, sub_category_id, name, slug)
	  VALUES(:id, :brand_id, :sub_category_id, :name, :slug)
	`, m)
	return classify(err)
}

func (r *BrandRepo) UpdateModel(m domain.Model) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE models SET brand_id = :brand_id, sub_category_id = :sub_category_id, name = :name,
	         slug = :slug, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, m)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *BrandRepo) DeleteModel(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- engines ----------

const engineCols = `id, brand_id, name, power_hp, fuel_type, created_at, updated_at`

func (r *BrandRepo) Engines() ([]domain.Engine, error) {
	out := []domain.Engine{}
	err := r.db.Select(&out, `SELECT `+engineCols+` FROM engines ORDER BY name`)
	return out, err
}

func (r *BrandRepo) GetEngine(id string) (domain.Engine, error) {
	var e domain.Engine
	err := r.db.Get(&e, `SELECT `+engineCols+` FROM engines WHERE id = ?`, id)
	return e, err
}

func (r *BrandRepo) CreateEngine(e domain.Engine) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO engines(id, brand_id, name, power_hp, fuel_type)
	  VALUES(:id, :brand_id, :name, :power_hp, :fuel_type)
	`, e)
	return classify(err)
}

func (r *BrandRepo) UpdateEngine(e domain.Engine) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE engines SET brand_id = :brand_id, name = :name, power_hp = :power_hp,
	         fuel_type = :fuel_type, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, e)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *BrandRepo) DeleteEngine(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM engines WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
