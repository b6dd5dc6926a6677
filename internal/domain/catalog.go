package domain

// Category is the top level of the equipment taxonomy (Excavators, Loaders, ...).
type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name" validate:"required,max=80"`
	Slug        string `db:"slug" json:"slug" validate:"omitempty,slug"`
	Description string `db:"description" json:"description" validate:"max=2000"`
	ImageURL    string `db:"image_url" json:"image_url" validate:"omitempty,max=500"`
	SortOrder   int    `db:"sort_order" json:"sort_order" validate:"min=0"`
	CreatedAt   string `db:"created_at" json:"created_at"`
	UpdatedAt   string `db:"updated_at" json:"updated_at"`
	AdCount     int    `db:"ad_count" json:"ad_count"`
}

type SubCategory struct {
	ID         string `db:"id" json:"id"`
	CategoryID string `db:"category_id" json:"category_id" validate:"required,max=64"`
	Name       string `db:"name" json:"name" validate:"required,max=80"`
	Slug       string `db:"slug" json:"slug" validate:"omitempty,slug"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	UpdatedAt  string `db:"updated_at" json:"updated_at"`
}

type Brand struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required,max=80"`
	Slug      string `db:"slug" json:"slug" validate:"omitempty,slug"`
	LogoURL   string `db:"logo_url" json:"logo_url" validate:"omitempty,max=500"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
	AdCount   int    `db:"ad_count" json:"ad_count"`
}

// Model is a brand's machine model, optionally pinned to a sub-category.
type Model struct {
	ID            string  `db:"id" json:"id"`
	BrandID       string  `db:"brand_id" json:"brand_id" validate:"required,max=64"`
	SubCategoryID *string `db:"sub_category_id" json:"sub_category_id,omitempty" validate:"omitempty,max=64"`
	Name          string  `db:"name" json:"name" validate:"required,max=80"`
	Slug          string  `db:"slug" json:"slug" validate:"omitempty,slug"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
	UpdatedAt     string  `db:"updated_at" json:"updated_at"`
}

type Engine struct {
	ID        string  `db:"id" json:"id"`
	BrandID   *string `db:"brand_id" json:"brand_id,omitempty" validate:"omitempty,max=64"`
	Name      string  `db:"name" json:"name" validate:"required,max=80"`
	PowerHP   *int    `db:"power_hp" json:"power_hp,omitempty" validate:"omitempty,min=1,max=10000"`
	FuelType  string  `db:"fuel_type" json:"fuel_type" validate:"omitempty,oneof=diesel petrol electric hybrid gas"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

type Location struct {
	ID      string `db:"id" json:"id"`
	City    string `db:"city" json:"city" validate:"required,max=80"`
	Region  string `db:"region" json:"region" validate:"max=80"`
	Country string `db:"country" json:"country" validate:"omitempty,len=2,alpha"`
}
