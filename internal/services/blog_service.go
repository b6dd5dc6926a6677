package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/search"
)

type BlogService struct {
	Blogs *repos.BlogRepo
}

func NewBlogService(blogs *repos.BlogRepo) *BlogService { return &BlogService{Blogs: blogs} }

func normalizeBlog(b *domain.Blog) {
	b.Title = strings.TrimSpace(b.Title)
	b.Slug = slugFor(b.Title, b.Slug)
	b.Excerpt = strings.TrimSpace(b.Excerpt)
	b.Author = strings.TrimSpace(b.Author)
}

func (s *BlogService) ListPublished(page, limit int) ([]domain.Blog, search.Pagination, error) {
	page, limit = pageWindow(page, limit)
	blogs, total, err := s.Blogs.ListPublished(limit, (page-1)*limit)
	if err != nil {
		return nil, search.Pagination{}, mapErr("list blogs", err)
	}
	return blogs, search.NewPagination(page, limit, total), nil
}

func (s *BlogService) ListAll() ([]domain.Blog, error) {
	blogs, err := s.Blogs.ListAll()
	return blogs, mapErr("list blogs", err)
}

func (s *BlogService) Get(id string) (domain.Blog, error) {
	b, err := s.Blogs.Get(id)
	return b, mapErr("blog "+id, err)
}

// PublicBySlug hides drafts.
func (s *BlogService) PublicBySlug(slug string) (domain.Blog, error) {
	b, err := s.Blogs.BySlug(slug)
	if err != nil {
		return b, mapErr("blog "+slug, err)
	}
	if !b.Published {
		return domain.Blog{}, fmt.Errorf("blog %s: %w", slug, ErrNotFound)
	}
	return b, nil
}

// Create stores a draft, then publishes it when b.Published is set.
func (s *BlogService) Create(b domain.Blog) (domain.Blog, error) {
	normalizeBlog(&b)
	if err := check(b, b.Slug); err != nil {
		return b, err
	}
	publish := b.Published
	b.ID = uuid.NewString()
	b.Published, b.PublishedAt = false, nil
	if err := s.Blogs.Create(b); err != nil {
		return b, mapErr("create blog", err)
	}
	if publish {
		if err := s.Publish(b.ID, true); err != nil {
			return b, err
		}
	}
	return s.Get(b.ID)
}

// Update edits content only; visibility goes through Publish.
func (s *BlogService) Update(id string, b domain.Blog) (domain.Blog, error) {
	b.ID = id
	normalizeBlog(&b)
	if err := check(b, b.Slug); err != nil {
		return b, err
	}
	ok, err := s.Blogs.Update(b)
	if err := affected("update blog", ok, err); err != nil {
		return b, err
	}
	return s.Get(id)
}

func (s *BlogService) Delete(id string) error {
	ok, err := s.Blogs.Delete(id)
	return affected("delete blog", ok, err)
}

// Publish toggles visibility; published_at keeps the first publication time.
func (s *BlogService) Publish(id string, published bool) error {
	ok, err := s.Blogs.Publish(id, published)
	return affected("publish blog", ok, err)
}

// SetCover points the blog cover at url.
func (s *BlogService) SetCover(id, url string) error {
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	b.CoverURL = url
	ok, err := s.Blogs.Update(b)
	return affected("set blog cover", ok, err)
}
