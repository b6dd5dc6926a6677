package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BlogRepo struct{ db *sqlx.DB }

func NewBlogRepo(db *sqlx.DB) *BlogRepo { return &BlogRepo{db: db} }

const blogCols = `id, title, slug, excerpt, content, cover_url, author, published, published_at, created_at, updated_at`

// ListPublished pages through published posts, most recent first.
func (r *BlogRepo) ListPublished(limit, offset int) ([]domain.Blog, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM blogs WHERE published = 1`); err != nil {
		return nil, 0, err
	}
	out := []domain.Blog{}
	err := r.db.Select(&out, `
	  SELECT `+blogCols+` FROM blogs
	  WHERE published = 1
	  ORDER BY datetime(published_at) DESC, id
	  LIMIT ? OFFSET ?`, limit, offset)
	return out, total, err
}

func (r *BlogRepo) ListAll() ([]domain.Blog, error) {
	out := []domain.Blog{}
	err := r.db.Select(&out, `SELECT `+blogCols+` FROM blogs ORDER BY datetime(created_at) DESC, id`)
	return out, err
}

func (r *BlogRepo) Get(id string) (domain.Blog, error) {
	var b domain.Blog
	err := r.db.Get(&b, `SELECT `+blogCols+` FROM blogs WHERE id = ?`, id)
	return b, err
}

func (r *BlogRepo) BySlug(slug string) (domain.Blog, error) {
	var b domain.Blog
	err := r.db.Get(&b, `SELECT `+blogCols+` FROM blogs WHERE LOWER(slug) = LOWER(?)`, slug)
	return b, err
}

func (r *BlogRepo) Create(b domain.Blog) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO blogs(id, title, slug, excerpt, content, cover_url, author, published, published_at)
	  VALUES(:id, :title, :slug, :excerpt, :content, :cover_url, :author, :published, :published_at)
	`, b)
	return classify(err)
}

func (r *BlogRepo) Update(b domain.Blog) (bool, error) {
	res, err := r.db.NamedExec(`
	  UPDATE blogs SET title = :title, slug = :slug, excerpt = :excerpt, content = :content,
	         cover_url = :cover_url, author = :author, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, b)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *BlogRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Publish toggles visibility. published_at is stamped the first time only.
func (r *BlogRepo) Publish(id string, published bool) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE blogs SET
	    published = ?,
	    published_at = CASE WHEN ? = 1 AND published_at IS NULL THEN CURRENT_TIMESTAMP ELSE published_at END,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?`, published, published, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
