package repos

import (
	"heavyequip/internal/domain"

	"github.com/jmoiron/sqlx"
)

type InquiryRepo struct{ db *sqlx.DB }

func NewInquiryRepo(db *sqlx.DB) *InquiryRepo { return &InquiryRepo{db: db} }

const inquiryCols = `id, name, email, phone, company, ad_id, store_id, details, status, urgency, notes, created_at, updated_at`

func (r *InquiryRepo) Create(q domain.Inquiry) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO inquiries(id, name, email, phone, company, ad_id, store_id, details, status, urgency)
	  VALUES(:id, :name, :email, :phone, :company, :ad_id, :store_id, :details, :status, :urgency)
	`, q)
	return classify(err)
}

func (r *InquiryRepo) Get(id string) (domain.Inquiry, error) {
	var q domain.Inquiry
	err := r.db.Get(&q, `SELECT `+inquiryCols+` FROM inquiries WHERE id = ?`, id)
	return q, err
}

// List filters by status and urgency (empty matches all), newest first.
func (r *InquiryRepo) List(status, urgency string, limit, offset int) ([]domain.Inquiry, int, error) {
	where := `1 = 1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	if urgency != "" {
		where += ` AND urgency = ?`
		args = append(args, urgency)
	}
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM inquiries WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	out := []domain.Inquiry{}
	err := r.db.Select(&out, `
	  SELECT `+inquiryCols+` FROM inquiries
	  WHERE `+where+`
	  ORDER BY datetime(created_at) DESC, id
	  LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

func (r *InquiryRepo) UpdateStatus(id, status string) (bool, error) {
	res, err := r.db.Exec(`UPDATE inquiries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddNote appends a line to the running notes of an inquiry.
func (r *InquiryRepo) AddNote(id, note string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE inquiries SET
	    notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?`, note, note, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *InquiryRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *InquiryRepo) CountByStatus() (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}{}
	if err := r.db.Select(&rows, `SELECT status, COUNT(*) AS n FROM inquiries GROUP BY status`); err != nil {
		return nil, err
	}
	out := map[string]int{
		domain.InquiryNew: 0, domain.InquiryInProgress: 0, domain.InquiryResolved: 0, domain.InquiryClosed: 0,
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
