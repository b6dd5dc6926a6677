package services

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"heavyequip/internal/cache"
	"heavyequip/internal/metrics"
	"heavyequip/internal/repos"
	"heavyequip/internal/search"
)

const facetsKey = cache.SearchPrefix + "facets"

type SearchService struct {
	Repo  *repos.SearchRepo
	Cache cache.Cache
	TTL   time.Duration
}

func NewSearchService(r *repos.SearchRepo, c cache.Cache, ttl time.Duration) *SearchService {
	return &SearchService{Repo: r, Cache: c, TTL: ttl}
}

// Search runs p against the listing view without touching the cache.
func (s *SearchService) Search(ctx context.Context, p search.Params) (search.Result, error) {
	done := metrics.ObserveDB("search")
	rows, total, err := s.Repo.Run(ctx, search.Build(p), p.Limit, p.Offset())
	done()
	if err != nil {
		return search.Result{}, mapErr("search", err)
	}
	metrics.SearchResults.Observe(float64(total))
	return search.Result{
		Data:       rows,
		Pagination: search.NewPagination(p.Page, p.Limit, total),
		Filters:    p,
	}, nil
}

// SearchJSON returns the encoded result body and whether it came from cache.
func (s *SearchService) SearchJSON(ctx context.Context, p search.Params) ([]byte, bool, error) {
	return s.cached(ctx, "search", p.Key(), func() (any, error) { return s.Search(ctx, p) })
}

func (s *SearchService) FacetsJSON(ctx context.Context) ([]byte, bool, error) {
	return s.cached(ctx, "facets", facetsKey, func() (any, error) {
		f, err := s.Repo.Facets(ctx)
		return f, mapErr("facets", err)
	})
}

func (s *SearchService) cached(ctx context.Context, name, key string, load func() (any, error)) ([]byte, bool, error) {
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, key); ok {
			metrics.CacheRequests.WithLabelValues(name, "hit").Inc()
			return b, true, nil
		}
	}
	metrics.CacheRequests.WithLabelValues(name, "miss").Inc()
	v, err := load()
	if err != nil {
		return nil, false, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, key, b, s.TTL)
	}
	return b, false, nil
}
