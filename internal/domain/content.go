package domain

import "github.com/jmoiron/sqlx/types"

type Blog struct {
	ID          string  `db:"id" json:"id"`
	Title       string  `db:"title" json:"title" validate:"required,max=200"`
	Slug        string  `db:"slug" json:"slug" validate:"omitempty,slug"`
	Excerpt     string  `db:"excerpt" json:"excerpt" validate:"max=500"`
	Content     string  `db:"content" json:"content" validate:"required"`
	CoverURL    string  `db:"cover_url" json:"cover_url" validate:"omitempty,max=500"`
	Author      string  `db:"author" json:"author" validate:"max=120"`
	Published   bool    `db:"published" json:"published"`
	PublishedAt *string `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

const (
	InquiryNew        = "new"
	InquiryInProgress = "in_progress"
	InquiryResolved   = "resolved"
	InquiryClosed     = "closed"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// Inquiry is a customer request for equipment. Details holds the free-form
// request (equipment wanted, dates, budget...) as a JSON object.
type Inquiry struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name" validate:"required,max=120"`
	Email     string         `db:"email" json:"email" validate:"required,email,max=120"`
	Phone     string         `db:"phone" json:"phone" validate:"omitempty,phone"`
	Company   string         `db:"company" json:"company" validate:"max=120"`
	AdID      *string        `db:"ad_id" json:"ad_id,omitempty" validate:"omitempty,max=64"`
	StoreID   *string        `db:"store_id" json:"store_id,omitempty" validate:"omitempty,max=64"`
	Details   types.JSONText `db:"details" json:"details"`
	Status    string         `db:"status" json:"status" validate:"omitempty,inquiry_status"`
	Urgency   string         `db:"urgency" json:"urgency" validate:"omitempty,urgency"`
	Notes     string         `db:"notes" json:"notes"`
	CreatedAt string         `db:"created_at" json:"created_at"`
	UpdatedAt string         `db:"updated_at" json:"updated_at"`
}
