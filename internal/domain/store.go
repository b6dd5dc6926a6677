package domain

const (
	StorePending  = "pending"
	StoreVerified = "verified"
	StoreRejected = "rejected"
)

const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Store is a dealer or rental company that owns ads.
type Store struct {
	ID                 string  `db:"id" json:"id"`
	Name               string  `db:"name" json:"name" validate:"required,max=120"`
	Slug               string  `db:"slug" json:"slug" validate:"omitempty,slug"`
	Description        string  `db:"description" json:"description" validate:"max=5000"`
	LogoURL            string  `db:"logo_url" json:"logo_url" validate:"omitempty,max=500"`
	BannerURL          string  `db:"banner_url" json:"banner_url" validate:"omitempty,max=500"`
	Phone              string  `db:"phone" json:"phone" validate:"omitempty,phone"`
	Email              string  `db:"email" json:"email" validate:"omitempty,email,max=120"`
	Website            string  `db:"website" json:"website" validate:"omitempty,url,max=300"`
	LocationID         *string `db:"location_id" json:"location_id,omitempty"`
	VerificationStatus string  `db:"verification_status" json:"verification_status" validate:"omitempty,store_status"`
	SubscriptionStatus string  `db:"subscription_status" json:"subscription_status" validate:"omitempty,subscription_status"`
	CreatedAt          string  `db:"created_at" json:"created_at"`
	UpdatedAt          string  `db:"updated_at" json:"updated_at"`
	City               *string `db:"city" json:"city,omitempty"`
	ActiveAds          int     `db:"active_ads" json:"active_ads"`
}

func (s Store) Verified() bool { return s.VerificationStatus == StoreVerified }
