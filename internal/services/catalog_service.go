package services

import (
	"context"
	"fmt"
	"strings"

	"heavyequip/internal/cache"
	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/validate"

	"github.com/google/uuid"
)

type CatalogService struct {
	Cats      *repos.CategoryRepo
	Brands    *repos.BrandRepo
	Locations *repos.LocationRepo
	Cache     cache.Cache
}

func NewCatalogService(cats *repos.CategoryRepo, brands *repos.BrandRepo, locs *repos.LocationRepo, c cache.Cache) *CatalogService {
	return &CatalogService{Cats: cats, Brands: brands, Locations: locs, Cache: c}
}

// slugFor keeps an explicit slug (lowercased) or derives one from name.
func slugFor(name, slug string) string {
	if s := strings.ToLower(strings.TrimSpace(slug)); s != "" {
		return s
	}
	return validate.Slugify(name)
}

// check validates v and reports a missing slug as a field error.
func check(v any, slug string) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if slug == "" {
		errs := &validate.Errors{}
		errs.Add("slug", "could not be derived from name; provide one")
		return errs
	}
	return nil
}

// invalidateSearch drops cached search pages after catalog or listing writes.
func invalidateSearch(c cache.Cache) {
	if c != nil {
		c.DeletePrefix(context.Background(), cache.SearchPrefix)
	}
}

// ---------- categories ----------

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	cats, err := s.Cats.List()
	return cats, mapErr("list categories", err)
}

func (s *CatalogService) CategoryBySlug(slug string) (domain.Category, error) {
	c, err := s.Cats.BySlug(slug)
	return c, mapErr("category "+slug, err)
}

func (s *CatalogService) GetCategory(id string) (domain.Category, error) {
	c, err := s.Cats.Get(id)
	return c, mapErr("category "+id, err)
}

func (s *CatalogService) CreateCategory(c domain.Category) (domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = slugFor(c.Name, c.Slug)
	if err := check(c, c.Slug); err != nil {
		return c, err
	}
	c.ID = uuid.NewString()
	if err := s.Cats.Create(c); err != nil {
		return c, mapErr("create category", err)
	}
	invalidateSearch(s.Cache)
	return s.GetCategory(c.ID)
}

func (s *CatalogService) UpdateCategory(id string, c domain.Category) (domain.Category, error) {
	c.ID = id
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = slugFor(c.Name, c.Slug)
	if err := check(c, c.Slug); err != nil {
		return c, err
	}
	ok, err := s.Cats.Update(c)
	if err := affected("update category", ok, err); err != nil {
		return c, err
	}
	invalidateSearch(s.Cache)
	return s.GetCategory(id)
}

// DeleteCategory refuses while ads still point at the category.
func (s *CatalogService) DeleteCategory(id string) error {
	ok, err := s.Cats.Delete(id)
	if err := affected("delete category", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// ---------- sub-categories ----------

func (s *CatalogService) ListSubCategories(categoryID string) ([]domain.SubCategory, error) {
	subs, err := s.Cats.ListSub(categoryID)
	return subs, mapErr("list sub-categories", err)
}

func (s *CatalogService) CreateSubCategory(sc domain.SubCategory) (domain.SubCategory, error) {
	sc.Name = strings.TrimSpace(sc.Name)
	sc.Slug = slugFor(sc.Name, sc.Slug)
	if err := check(sc, sc.Slug); err != nil {
		return sc, err
	}
	if err := s.checkSubRefs(sc); err != nil {
		return sc, err
	}
	sc.ID = uuid.NewString()
	if err := s.Cats.CreateSub(sc); err != nil {
		return sc, mapErr("create sub-category", err)
	}
	invalidateSearch(s.Cache)
	out, err := s.Cats.GetSub(sc.ID)
	return out, mapErr("sub-category "+sc.ID, err)
}

func (s *CatalogService) UpdateSubCategory(id string, sc domain.SubCategory) (domain.SubCategory, error) {
	sc.ID = id
	sc.Name = strings.TrimSpace(sc.Name)
	sc.Slug = slugFor(sc.Name, sc.Slug)
	if err := check(sc, sc.Slug); err != nil {
		return sc, err
	}
	if err := s.checkSubRefs(sc); err != nil {
		return sc, err
	}
	ok, err := s.Cats.UpdateSub(sc)
	if err := affected("update sub-category", ok, err); err != nil {
		return sc, err
	}
	invalidateSearch(s.Cache)
	out, err := s.Cats.GetSub(id)
	return out, mapErr("sub-category "+id, err)
}

func (s *CatalogService) DeleteSubCategory(id string) error {
	ok, err := s.Cats.DeleteSub(id)
	if err := affected("delete sub-category", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

func (s *CatalogService) checkSubRefs(sc domain.SubCategory) error {
	errs := &validate.Errors{}
	if err := requireRef(errs, "category_id", &sc.CategoryID, func(id string) error { _, err := s.Cats.Get(id); return err }); err != nil {
		return err
	}
	return errs.Err()
}

// ---------- brands ----------

func (s *CatalogService) ListBrands() ([]domain.Brand, error) {
	brands, err := s.Brands.List()
	return brands, mapErr("list brands", err)
}

func (s *CatalogService) GetBrand(id string) (domain.Brand, error) {
	b, err := s.Brands.Get(id)
	return b, mapErr("brand "+id, err)
}

func (s *CatalogService) CreateBrand(b domain.Brand) (domain.Brand, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Slug = slugFor(b.Name, b.Slug)
	if err := check(b, b.Slug); err != nil {
		return b, err
	}
	b.ID = uuid.NewString()
	if err := s.Brands.Create(b); err != nil {
		return b, mapErr("create brand", err)
	}
	invalidateSearch(s.Cache)
	return s.GetBrand(b.ID)
}

func (s *CatalogService) UpdateBrand(id string, b domain.Brand) (domain.Brand, error) {
	b.ID = id
	b.Name = strings.TrimSpace(b.Name)
	b.Slug = slugFor(b.Name, b.Slug)
	if err := check(b, b.Slug); err != nil {
		return b, err
	}
	ok, err := s.Brands.Update(b)
	if err := affected("update brand", ok, err); err != nil {
		return b, err
	}
	invalidateSearch(s.Cache)
	return s.GetBrand(id)
}

// DeleteBrand refuses while ads reference the brand; its models go with it.
func (s *CatalogService) DeleteBrand(id string) error {
	ok, err := s.Brands.Delete(id)
	if err := affected("delete brand", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// ---------- models ----------

func (s *CatalogService) ListModels(brandID string) ([]domain.Model, error) {
	models, err := s.Brands.Models(brandID)
	return models, mapErr("list models", err)
}

func (s *CatalogService) CreateModel(m domain.Model) (domain.Model, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Slug = slugFor(m.Name, m.Slug)
	if err := check(m, m.Slug); err != nil {
		return m, err
	}
	if err := s.checkModelRefs(&m); err != nil {
		return m, err
	}
	m.ID = uuid.NewString()
	if err := s.Brands.CreateModel(m); err != nil {
		return m, mapErr("create model", err)
	}
	invalidateSearch(s.Cache)
	out, err := s.Brands.GetModel(m.ID)
	return out, mapErr("model "+m.ID, err)
}

func (s *CatalogService) UpdateModel(id string, m domain.Model) (domain.Model, error) {
	m.ID = id
	m.Name = strings.TrimSpace(m.Name)
	m.Slug = slugFor(m.Name, m.Slug)
	if err := check(m, m.Slug); err != nil {
		return m, err
	}
	if err := s.checkModelRefs(&m); err != nil {
		return m, err
	}
	ok, err := s.Brands.UpdateModel(m)
	if err := affected("update model", ok, err); err != nil {
		return m, err
	}
	invalidateSearch(s.Cache)
	out, err := s.Brands.GetModel(id)
	return out, mapErr("model "+id, err)
}

// checkModelRefs also requires the sub-category, when given, to exist.
// A blank sub_category_id is cleared.
func (s *CatalogService) checkModelRefs(m *domain.Model) error {
	if m.SubCategoryID != nil && strings.TrimSpace(*m.SubCategoryID) == "" {
		m.SubCategoryID = nil
	}
	errs := &validate.Errors{}
	if err := requireRef(errs, "brand_id", &m.BrandID, func(id string) error { _, err := s.Brands.Get(id); return err }); err != nil {
		return err
	}
	if err := requireRef(errs, "sub_category_id", m.SubCategoryID, func(id string) error { _, err := s.Cats.GetSub(id); return err }); err != nil {
		return err
	}
	return errs.Err()
}

func (s *CatalogService) DeleteModel(id string) error {
	ok, err := s.Brands.DeleteModel(id)
	if err := affected("delete model", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// ---------- engines ----------

func (s *CatalogService) ListEngines() ([]domain.Engine, error) {
	engines, err := s.Brands.Engines()
	return engines, mapErr("list engines", err)
}

func (s *CatalogService) CreateEngine(e domain.Engine) (domain.Engine, error) {
	e.Name = strings.TrimSpace(e.Name)
	if err := validate.Struct(e); err != nil {
		return e, err
	}
	if err := s.checkEngineRefs(&e); err != nil {
		return e, err
	}
	e.ID = uuid.NewString()
	if err := s.Brands.CreateEngine(e); err != nil {
		return e, mapErr("create engine", err)
	}
	out, err := s.Brands.GetEngine(e.ID)
	return out, mapErr("engine "+e.ID, err)
}

func (s *CatalogService) UpdateEngine(id string, e domain.Engine) (domain.Engine, error) {
	e.ID = id
	e.Name = strings.TrimSpace(e.Name)
	if err := validate.Struct(e); err != nil {
		return e, err
	}
	if err := s.checkEngineRefs(&e); err != nil {
		return e, err
	}
	ok, err := s.Brands.UpdateEngine(e)
	if err := affected("update engine", ok, err); err != nil {
		return e, err
	}
	invalidateSearch(s.Cache)
	out, err := s.Brands.GetEngine(id)
	return out, mapErr("engine "+id, err)
}

func (s *CatalogService) checkEngineRefs(e *domain.Engine) error {
	if e.BrandID != nil && strings.TrimSpace(*e.BrandID) == "" {
		e.BrandID = nil
	}
	errs := &validate.Errors{}
	if err := requireRef(errs, "brand_id", e.BrandID, func(id string) error { _, err := s.Brands.Get(id); return err }); err != nil {
		return err
	}
	return errs.Err()
}

func (s *CatalogService) DeleteEngine(id string) error {
	ok, err := s.Brands.DeleteEngine(id)
	if err := affected("delete engine", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// ---------- locations ----------

func (s *CatalogService) ListLocations() ([]domain.Location, error) {
	locs, err := s.Locations.List()
	return locs, mapErr("list locations", err)
}

func (s *CatalogService) CreateLocation(l domain.Location) (domain.Location, error) {
	l.City = strings.TrimSpace(l.City)
	l.Region = strings.TrimSpace(l.Region)
	l.Country = strings.ToUpper(strings.TrimSpace(l.Country))
	if err := validate.Struct(l); err != nil {
		return l, err
	}
	l.ID = uuid.NewString()
	if err := s.Locations.Create(l); err != nil {
		return l, mapErr("create location", err)
	}
	return l, nil
}

func (s *CatalogService) DeleteLocation(id string) error {
	ok, err := s.Locations.Delete(id)
	if err := affected("delete location", ok, err); err != nil {
		return err
	}
	invalidateSearch(s.Cache)
	return nil
}

// requireRef reports a field error when a referenced id does not exist.
func requireRef(errs *validate.Errors, field string, id *string, get func(string) error) error {
	if id == nil || *id == "" {
		return nil
	}
	if err := get(*id); err != nil {
		if isNotFound(err) {
			errs.Add(field, "does not exist")
			return nil
		}
		return fmt.Errorf("check %s: %w", field, err)
	}
	return nil
}
