package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `c.id, c.name, c.slug, c.description, c.image_url, c.sort_order, c.created_at, c.updated_at`

// List returns every category with the number of active ads in it.
func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `
	  SELECT `+categoryCols+`,
	         (SELECT COUNT(*) FROM ads_with_all_joins a WHERE a.category_id = c.id AND `+publicAd+`) AS ad_count
	  FROM categories c
	  ORDER BY c.sort_order, c.name
	`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+`, 0 AS ad_count FROM categories c WHERE c.id = ?`, id)
	return c, err
}

func (r *CategoryRepo) BySlug(slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+`, 0 AS ad_count FROM categories c WHERE LOWER(c.slug) = LOWER(?)`, slug)
	return c, err
}

func (r *CategoryRepo) Create(c domain.Category) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO categories(id, name, slug, description, image_url, sort_order)
	  VALUES(:id, :name, :slug, :description, :image_url, :sort_order)
	`, c)
	return classify(err)
}

func (r *CategoryRepo) Update(c domain.Category) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE categories
	  SET name = :name, slug = :slug, description = :description, image_url = :image_url,
	      sort_order = :sort_order, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, c)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete fails with ErrConflict while ads still reference the category.
func (r *CategoryRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CategoryRepo) ListSub(categoryID string) ([]domain.SubCategory, error) {
	out := []domain.SubCategory{}
	q := `SELECT id, category_id, name, slug, created_at, updated_at FROM sub_categories`
	args := []any{}
	if categoryID != "" {
		q += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	err := r.db.Select(&out, q+` ORDER BY name`, args...)
	return out, err
}

func (r *CategoryRepo) GetSub(id string) (domain.SubCategory, error) {
	var s domain.SubCategory
	err := r.db.Get(&s, `SELECT id, category_id, name, slug, created_at, updated_at FROM sub_categories WHERE id = ?`, id)
	return s, err
}

func (r *CategoryRepo) CreateSub(s domain.SubCategory) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO sub_categories(id, category_id, name, slug)
	  VALUES(:id, :category_id, :name, :slug)
	`, s)
	return classify(err)
}

func (r *CategoryRepo) UpdateSub(s domain.SubCategory) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE sub_categories
	  SET category_id = :category_id, name = :name, slug = :slug, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, s)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CategoryRepo) DeleteSub(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM sub_categories WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
