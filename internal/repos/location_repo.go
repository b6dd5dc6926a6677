package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type LocationRepo struct{ db *sqlx.DB }

func NewLocationRepo(db *sqlx.DB) *LocationRepo { return &LocationRepo{db: db} }

func (r *LocationRepo) List() ([]domain.Location, error) {
	out := []domain.Location{}
	err := r.db.Select(&out, `SELECT id, city, region, country FROM locations ORDER BY country, city`)
	return out, err
}

func (r *LocationRepo) Get(id string) (domain.Location, error) {
	var l domain.Location
	err := r.db.Get(&l, `SELECT id, city, region, country FROM locations WHERE id = ?`, id)
	return l, err
}

func (r *LocationRepo) Create(l domain.Location) error {
	_, err := r.db.NamedExec(`INSERT INTO locations(id, city, region, country) VALUES(:id, :city, :region, :country)`, l)
	return classify(err)
}

func (r *LocationRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
