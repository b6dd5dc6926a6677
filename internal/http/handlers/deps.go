package handlers

import (
	"heavyequip/internal/cache"
	"heavyequip/internal/config"
	"heavyequip/internal/repos"
	"heavyequip/internal/services"
	"heavyequip/internal/storage"

	"github.com/jmoiron/sqlx"
)

// Deps holds every handler the server mounts.
type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	PublicHandler  *PublicHandler
	SearchHandler  *SearchHandler
	CatalogAPI     *CatalogAPI
	InquiryHandler *InquiryHandler
	SavedHandler   *SavedHandler

	AdminHandler        *AdminHandler
	AdminCatalogHandler *AdminCatalogHandler
	AdminListingHandler *AdminListingHandler
	AdminContentHandler *AdminContentHandler
	MediaHandler        *MediaHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, c cache.Cache, media storage.Store) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	brandRepo := repos.NewBrandRepo(db)
	locRepo := repos.NewLocationRepo(db)
	adRepo := repos.NewAdRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	blogRepo := repos.NewBlogRepo(db)
	inqRepo := repos.NewInquiryRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := &services.AuthService{Users: userRepo}
	catalogSvc := services.NewCatalogService(catRepo, brandRepo, locRepo, c)
	adSvc := services.NewAdService(adRepo, catRepo, brandRepo, storeRepo, c)
	storeSvc := services.NewStoreService(storeRepo, adRepo, locRepo, c)
	blogSvc := services.NewBlogService(blogRepo)
	inqSvc := services.NewInquiryService(inqRepo, adRepo, storeRepo)
	savedSvc := services.NewSavedService(repos.NewSavedRepo(db), adRepo)
	searchSvc := services.NewSearchService(repos.NewSearchRepo(db), c, cfg.Cache.SearchTTL)
	statsSvc := services.NewStatsService(repos.NewStatsRepo(db), inqRepo)
	mediaSvc := &services.MediaService{Store: media, Ads: adSvc, Stores: storeSvc, Blogs: blogSvc}

	secure := cfg.Security.CookieSecure
	return &Deps{
		Auth:        authSvc,
		AuthHandler: &AuthHandler{Auth: authSvc, SecureCookie: secure},
		PublicHandler: &PublicHandler{
			Catalog: catalogSvc, Ads: adSvc, Stores: storeSvc, Blogs: blogSvc, Search: searchSvc,
		},
		SearchHandler:  &SearchHandler{Search: searchSvc, Catalog: catalogSvc},
		CatalogAPI:     &CatalogAPI{Catalog: catalogSvc, Ads: adSvc},
		InquiryHandler: &InquiryHandler{Inquiries: inqSvc, Ads: adSvc},
		SavedHandler:   &SavedHandler{Saved: savedSvc, SecureCookie: secure},

		AdminHandler:        &AdminHandler{Auth: authSvc, Stats: statsSvc},
		AdminCatalogHandler: &AdminCatalogHandler{Catalog: catalogSvc},
		AdminListingHandler: &AdminListingHandler{Ads: adSvc, Stores: storeSvc},
		AdminContentHandler: &AdminContentHandler{Blogs: blogSvc, Inquiries: inqSvc},
		MediaHandler:        &MediaHandler{Media: mediaSvc},
	}
}
