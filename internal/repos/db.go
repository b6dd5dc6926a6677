package repos

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "heavyequip/internal/log"
)

// ErrConflict reports a unique or foreign key violation.
var ErrConflict = errors.New("conflicting record")

// publicAd filters ads_with_all_joins rows down to what visitors may see.
const publicAd = `status = 'active' AND COALESCE(store_verification_status, '') <> 'rejected'`

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; one connection keeps :memory: databases and
	// per-connection pragmas consistent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	return db, nil
}

// classify maps sqlite constraint failures onto ErrConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return errors.Join(ErrConflict, err)
	}
	return err
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_slug ON categories(LOWER(slug));

CREATE TABLE IF NOT EXISTS sub_categories(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sub_categories_slug ON sub_categories(LOWER(slug));
CREATE INDEX IF NOT EXISTS idx_sub_categories_category ON sub_categories(category_id);

CREATE TABLE IF NOT EXISTS brands(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  logo_url TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_slug ON brands(LOWER(slug));

CREATE TABLE IF NOT EXISTS models(
  id TEXT PRIMARY KEY,
  brand_id TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  sub_category_id TEXT NULL REFERENCES sub_categories(id) ON DELETE SET NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_models_slug ON models(LOWER(slug));
CREATE INDEX IF NOT EXISTS idx_models_brand ON models(brand_id);

CREATE TABLE IF NOT EXISTS engines(
  id TEXT PRIMARY KEY,
  brand_id TEXT NULL REFERENCES brands(id) ON DELETE SET NULL,
  name TEXT NOT NULL,
  power_hp INTEGER NULL,
  fuel_type TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS locations(
  id TEXT PRIMARY KEY,
  city TEXT NOT NULL,
  region TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT ''
);

-- Stores
CREATE TABLE IF NOT EXISTS stores(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  logo_url TEXT NOT NULL DEFAULT '',
  banner_url TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  location_id TEXT NULL REFERENCES locations(id) ON DELETE SET NULL,
  verification_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (verification_status IN ('pending','verified','rejected')),
  subscription_status TEXT NOT NULL DEFAULT 'trial'
    CHECK (subscription_status IN ('trial','active','expired','cancelled')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_slug ON stores(LOWER(slug));
CREATE INDEX IF NOT EXISTS idx_stores_created_at ON stores(created_at);

-- Ads
CREATE TABLE IF NOT EXISTS ads(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  listing_type TEXT NOT NULL CHECK (listing_type IN ('sale','rent')),
  condition TEXT NOT NULL CHECK (condition IN ('new','used','refurbished')),
  price NUMERIC NULL CHECK (price IS NULL OR price >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  rental_period TEXT NOT NULL DEFAULT '',
  year INTEGER NULL,
  hours INTEGER NULL CHECK (hours IS NULL OR hours >= 0),
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  sub_category_id TEXT NULL REFERENCES sub_categories(id) ON DELETE SET NULL,
  brand_id TEXT NULL REFERENCES brands(id) ON DELETE RESTRICT,
  model_id TEXT NULL REFERENCES models(id) ON DELETE SET NULL,
  engine_id TEXT NULL REFERENCES engines(id) ON DELETE SET NULL,
  store_id TEXT NULL REFERENCES stores(id) ON DELETE RESTRICT,
  location_id TEXT NULL REFERENCES locations(id) ON DELETE SET NULL,
  images_json TEXT NOT NULL DEFAULT '[]',
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('draft','pending','active','sold','archived')),
  featured INTEGER NOT NULL DEFAULT 0,
  views INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ads_slug ON ads(LOWER(slug));
CREATE INDEX IF NOT EXISTS idx_ads_status     ON ads(status);
CREATE INDEX IF NOT EXISTS idx_ads_type       ON ads(listing_type);
CREATE INDEX IF NOT EXISTS idx_ads_category   ON ads(category_id);
CREATE INDEX IF NOT EXISTS idx_ads_brand      ON ads(brand_id);
CREATE INDEX IF NOT EXISTS idx_ads_store      ON ads(store_id);
CREATE INDEX IF NOT EXISTS idx_ads_price      ON ads(price);
CREATE INDEX IF NOT EXISTS idx_ads_created_at ON ads(created_at);

CREATE VIEW IF NOT EXISTS ads_with_all_joins AS
SELECT
  a.*,
  c.name  AS category_name,
  c.slug  AS category_slug,
  sc.name AS sub_category_name,
  b.name  AS brand_name,
  b.slug  AS brand_slug,
  m.name  AS model_name,
  e.name  AS engine_name,
  s.name  AS store_name,
  s.slug  AS store_slug,
  s.logo_url AS store_logo_url,
  s.verification_status AS store_verification_status,
  l.city, l.region, l.country
FROM ads a
JOIN categories c          ON c.id  = a.category_id
LEFT JOIN sub_categories sc ON sc.id = a.sub_category_id
LEFT JOIN brands b         ON b.id  = a.brand_id
LEFT JOIN models m         ON m.id  = a.model_id
LEFT JOIN engines e        ON e.id  = a.engine_id
LEFT JOIN stores s         ON s.id  = a.store_id
LEFT JOIN locations l      ON l.id  = COALESCE(a.location_id, s.location_id);

-- Content
CREATE TABLE IF NOT EXISTS blogs(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  excerpt TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  cover_url TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  published INTEGER NOT NULL DEFAULT 0,
  published_at TEXT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_blogs_slug ON blogs(LOWER(slug));

CREATE TABLE IF NOT EXISTS inquiries(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  ad_id TEXT NULL REFERENCES ads(id) ON DELETE SET NULL,
  store_id TEXT NULL REFERENCES stores(id) ON DELETE SET NULL,
  details TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'new'
    CHECK (status IN ('new','in_progress','resolved','closed')),
  urgency TEXT NOT NULL DEFAULT 'medium'
    CHECK (urgency IN ('low','medium','high','urgent')),
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_inquiries_status     ON inquiries(status);
CREATE INDEX IF NOT EXISTS idx_inquiries_created_at ON inquiries(created_at);

-- Saved ads per browser session
CREATE TABLE IF NOT EXISTS saved_lists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS saved_items(
  list_id TEXT NOT NULL REFERENCES saved_lists(id) ON DELETE CASCADE,
  ad_id   TEXT NOT NULL REFERENCES ads(id) ON DELETE CASCADE,
  created_at TEXT,
  PRIMARY KEY (list_id, ad_id)
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	l := applog.Logger()
	l.Info().Str("action", "seed").Msg("inserting demo catalog, stores, ads and content")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO categories(id,name,slug,description,sort_order) VALUES
		  ('excavators','Excavators','excavators','Crawler, wheeled and mini excavators',1),
		  ('wheel-loaders','Wheel Loaders','wheel-loaders','Front loaders for material handling',2),
		  ('cranes','Cranes','cranes','Mobile, crawler and tower cranes',3),
		  ('generators','Generators','generators','Diesel and gas power generation',4)`,
		`INSERT INTO sub_categories(id,category_id,name,slug) VALUES
		  ('crawler-excavators','excavators','Crawler Excavators','crawler-excavators'),
		  ('mini-excavators','excavators','Mini Excavators','mini-excavators'),
		  ('mobile-cranes','cranes','Mobile Cranes','mobile-cranes')`,
		`INSERT INTO brands(id,name,slug) VALUES
		  ('caterpillar','Caterpillar','caterpillar'),
		  ('komatsu','Komatsu','komatsu'),
		  ('liebherr','Liebherr','liebherr'),
		  ('volvo-ce','Volvo CE','volvo-ce')`,
		`INSERT INTO models(id,brand_id,sub_category_id,name,slug) VALUES
		  ('cat-320','caterpillar','crawler-excavators','320','cat-320'),
		  ('cat-301-7','caterpillar','mini-excavators','301.7','cat-301-7'),
		  ('komatsu-pc210','komatsu','crawler-excavators','PC210LC','komatsu-pc210'),
		  ('liebherr-ltm-1100','liebherr','mobile-cranes','LTM 1100-5.2','liebherr-ltm-1100'),
		  ('volvo-l120h','volvo-ce',NULL,'L120H','volvo-l120h')`,
		`INSERT INTO engines(id,brand_id,name,power_hp,fuel_type) VALUES
		  ('cat-c7-1','caterpillar','Cat C7.1',162,'diesel'),
		  ('volvo-d8j','volvo-ce','Volvo D8J',272,'diesel')`,
		`INSERT INTO locations(id,city,region,country) VALUES
		  ('houston','Houston','TX','US'),
		  ('denver','Denver','CO','US'),
		  ('atlanta','Atlanta','GA','US')`,
		`INSERT INTO stores(id,name,slug,description,phone,email,location_id,verification_status,subscription_status,created_at) VALUES
		  ('gulf-coast-machinery','Gulf Coast Machinery','gulf-coast-machinery','Dealer of used earthmoving equipment','+1 713 555 0100','sales@gulfcoast.test','houston','verified','active',datetime('now','-40 days')),
		  ('rocky-rentals','Rocky Mountain Rentals','rocky-rentals','Short and long term equipment rental','+1 303 555 0199','hello@rockyrentals.test','denver','pending','trial',datetime('now','-5 days'))`,
		`INSERT INTO ads(id,title,slug,description,listing_type,condition,price,currency,rental_period,year,hours,category_id,sub_category_id,brand_id,model_id,engine_id,store_id,images_json,status,featured,created_at) VALUES
		  ('ad-cat-320-2019','2019 Caterpillar 320 Excavator','2019-caterpillar-320-excavator','Well maintained, new undercarriage.','sale','used',145000,'USD','',2019,4200,'excavators','crawler-excavators','caterpillar','cat-320','cat-c7-1','gulf-coast-machinery','["ads/cat-320/1.jpg"]','active',1,datetime('now','-35 days')),
		  ('ad-pc210-2021','2021 Komatsu PC210LC-11','2021-komatsu-pc210lc-11','Low hours, one owner.','sale','used',168500,'USD','',2021,1850,'excavators','crawler-excavators','komatsu','komatsu-pc210',NULL,'gulf-coast-machinery','[]','active',0,datetime('now','-20 days')),
		  ('ad-cat-301-rent','Cat 301.7 Mini Excavator for Rent','cat-301-7-mini-excavator-for-rent','Delivered on site, trailer available.','rent','used',350,'USD','day',2022,900,'excavators','mini-excavators','caterpillar','cat-301-7',NULL,'rocky-rentals','[]','active',1,datetime('now','-4 days')),
		  ('ad-ltm-1100','Liebherr LTM 1100-5.2 Mobile Crane','liebherr-ltm-1100-5-2-mobile-crane','100 t capacity, full documentation.','sale','used',NULL,'USD','',2015,12000,'cranes','mobile-cranes','liebherr','liebherr-ltm-1100',NULL,'gulf-coast-machinery','[]','active',0,datetime('now','-12 days')),
		  ('ad-l120h-new','Volvo L120H Wheel Loader','volvo-l120h-wheel-loader','Brand new, factory warranty.','sale','new',289000,'USD','',2024,0,'wheel-loaders',NULL,'volvo-ce','volvo-l120h','volvo-d8j',NULL,'[]','active',0,datetime('now','-2 days')),
		  ('ad-genset-draft','150 kVA Diesel Generator','150-kva-diesel-generator','Awaiting photos.','rent','refurbished',900,'USD','week',2018,NULL,'generators',NULL,NULL,NULL,NULL,'rocky-rentals','[]','pending',0,datetime('now','-1 days'))`,
		`UPDATE ads SET location_id='atlanta' WHERE id='ad-l120h-new'`,
		`INSERT INTO blogs(id,title,slug,excerpt,content,author,published,published_at,created_at) VALUES
		  ('blog-buying-used','How to inspect a used excavator','how-to-inspect-a-used-excavator','A checklist before you buy.','Check the undercarriage, the swing bearing, hydraulic leaks and service records.','Editorial',1,datetime('now','-10 days'),datetime('now','-12 days')),
		  ('blog-rent-vs-buy','Rent or buy?','rent-or-buy','When renting heavy equipment pays off.','Draft in progress.','Editorial',0,NULL,datetime('now','-1 days'))`,
		`INSERT INTO inquiries(id,name,email,phone,company,ad_id,details,status,urgency,created_at) VALUES
		  ('inq-1','Dana Miller','dana@builders.test','+1 404 555 0142','Miller Builders','ad-cat-320-2019','{"equipment":"crawler excavator","budget":150000}','new','high',datetime('now','-3 days')),
		  ('inq-2','Sam Ortiz','sam@ortizsite.test','','',NULL,'{"equipment":"mobile crane","start":"next month","duration_days":14}','in_progress','medium',datetime('now','-15 days'))`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures the back-office accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	users := []u{
		mk("u-editor", "editor@heavyequip.test", "Editor", "USER", "Passw0rd!"),
		mk("u-admin", "admin@heavyequip.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}
	return tx.Commit()
}
