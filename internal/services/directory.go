package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/cache"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const directoryUsersCacheKey = "directory:users"

// DirectorySearcher is the read side of directory.Service.
type DirectorySearcher interface {
	ListChildOUs(ctx context.Context) []string
	SearchAllUsers(ctx context.Context) (*directory.SearchResult, error)
}

// DirectoryService serves OU and user listings, caching complete user
// listings for the configured TTL.
type DirectoryService struct {
	searcher DirectorySearcher
	cache    core.Cache[directory.SearchResult]
	cacheTTL time.Duration
	metrics  core.Recorder
	group    singleflight.Group
}

func NewDirectoryService(
	searcher DirectorySearcher,
	c core.Cache[directory.SearchResult],
	cacheTTL time.Duration,
	m core.Recorder,
) *DirectoryService {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &DirectoryService{
		searcher: searcher,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
	}
}

// ListOUs returns the child OUs of the configured parent base.
func (s *DirectoryService) ListOUs(ctx context.Context) ([]string, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("%w: directory not configured", directory.ErrConfiguration)
	}
	return s.searcher.ListChildOUs(ctx), nil
}

// ListUsers returns every enabled directory user. Results with failed OUs
// are returned but not cached so the next call retries them.
func (s *DirectoryService) ListUsers(ctx context.Context) (*directory.SearchResult, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("%w: directory not configured", directory.ErrConfiguration)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, directoryUsersCacheKey)
		if err == nil {
			s.metrics.RecordDirectoryCacheResult(true)
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[LDAP] Directory cache read failed: %v", err)
		}
		s.metrics.RecordDirectoryCacheResult(false)
	}

	v, err, _ := s.group.Do(directoryUsersCacheKey, func() (any, error) {
		start := time.Now()
		result, err := s.searcher.SearchAllUsers(ctx)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordDirectorySearch(time.Since(start), len(result.Users), len(result.FailedOUs))

		if s.cache != nil && len(result.FailedOUs) == 0 {
			if err := s.cache.Set(ctx, directoryUsersCacheKey, *result, s.cacheTTL); err != nil {
				log.Printf("[LDAP] Directory cache write failed: %v", err)
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*directory.SearchResult), nil
}

// InvalidateUsers drops the cached user listing.
func (s *DirectoryService) InvalidateUsers(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, directoryUsersCacheKey)
}
