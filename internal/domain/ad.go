package domain

import (
	"github.com/goccy/go-json"

	"github.com/shopspring/decimal"
)

const (
	ListingSale = "sale"
	ListingRent = "rent"
)

const (
	AdDraft    = "draft"
	AdPending  = "pending"
	AdActive   = "active"
	AdSold     = "sold"
	AdArchived = "archived"
)

// Ad is the writable listing row. A NULL price means "price on request".
type Ad struct {
	ID            string              `db:"id" json:"id"`
	Title         string              `db:"title" json:"title" validate:"required,min=3,max=140"`
	Slug          string              `db:"slug" json:"slug" validate:"omitempty,slug"`
	Description   string              `db:"description" json:"description" validate:"max=10000"`
	ListingType   string              `db:"listing_type" json:"listing_type" validate:"required,listing_type"`
	Condition     string              `db:"condition" json:"condition" validate:"required,condition"`
	Price         decimal.NullDecimal `db:"price" json:"price"`
	Currency      string              `db:"currency" json:"currency" validate:"omitempty,len=3,alpha"`
	RentalPeriod  string              `db:"rental_period" json:"rental_period" validate:"omitempty,oneof=hour day week month"`
	Year          *int                `db:"year" json:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Hours         *int                `db:"hours" json:"hours,omitempty" validate:"omitempty,min=0"`
	CategoryID    string              `db:"category_id" json:"category_id" validate:"required,max=64"`
	SubCategoryID *string             `db:"sub_category_id" json:"sub_category_id,omitempty"`
	BrandID       *string             `db:"brand_id" json:"brand_id,omitempty"`
	ModelID       *string             `db:"model_id" json:"model_id,omitempty"`
	EngineID      *string             `db:"engine_id" json:"engine_id,omitempty"`
	StoreID       *string             `db:"store_id" json:"store_id,omitempty"`
	LocationID    *string             `db:"location_id" json:"location_id,omitempty"`
	ImagesJSON    string              `db:"images_json" json:"-"`
	Status        string              `db:"status" json:"status" validate:"omitempty,oneof=draft pending active sold archived"`
	Featured      bool                `db:"featured" json:"featured"`
	Views         int                 `db:"views" json:"views"`
	CreatedAt     string              `db:"created_at" json:"created_at"`
	UpdatedAt     string              `db:"updated_at" json:"updated_at"`
}

// AdView is one row of the ads_with_all_joins view.
type AdView struct {
	Ad
	CategoryName      string  `db:"category_name" json:"category_name"`
	CategorySlug      string  `db:"category_slug" json:"category_slug"`
	SubCategoryName   *string `db:"sub_category_name" json:"sub_category_name,omitempty"`
	BrandName         *string `db:"brand_name" json:"brand_name,omitempty"`
	BrandSlug         *string `db:"brand_slug" json:"brand_slug,omitempty"`
	ModelName         *string `db:"model_name" json:"model_name,omitempty"`
	EngineName        *string `db:"engine_name" json:"engine_name,omitempty"`
	StoreName         *string `db:"store_name" json:"store_name,omitempty"`
	StoreSlug         *string `db:"store_slug" json:"store_slug,omitempty"`
	StoreLogoURL      *string `db:"store_logo_url" json:"store_logo_url,omitempty"`
	StoreVerification *string `db:"store_verification_status" json:"store_verification_status,omitempty"`
	City              *string `db:"city" json:"city,omitempty"`
	Region            *string `db:"region" json:"region,omitempty"`
	Country           *string `db:"country" json:"country,omitempty"`
}

// Images decodes the stored image list; malformed JSON yields no images.
func (a Ad) Images() []string {
	if a.ImagesJSON == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(a.ImagesJSON), &out); err != nil {
		return nil
	}
	return out
}

func (a AdView) MarshalJSON() ([]byte, error) {
	type alias AdView
	return json.Marshal(struct {
		alias
		Images []string `json:"images"`
	}{alias(a), a.Images()})
}

// Public reports whether visitors may see the ad: it is active and its
// store, if any, was not rejected.
func (a AdView) Public() bool {
	if a.Status != AdActive {
		return false
	}
	return a.StoreVerification == nil || *a.StoreVerification != StoreRejected
}

// PriceLabel renders the price for templates.
func (a Ad) PriceLabel() string {
	if !a.Price.Valid {
		return "Price on request"
	}
	label := a.Price.Decimal.StringFixed(2) + " " + a.Currency
	if a.ListingType == ListingRent && a.RentalPeriod != "" {
		label += " / " + a.RentalPeriod
	}
	return label
}
