package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/cache"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubSearcher struct {
	ous     []string
	result  *directory.SearchResult
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (s *stubSearcher) ListChildOUs(ctx context.Context) []string {
	return s.ous
}

func (s *stubSearcher) SearchAllUsers(ctx context.Context) (*directory.SearchResult, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.result
	return &copied, nil
}

func sampleResult() *directory.SearchResult {
	return &directory.SearchResult{
		Users: []directory.User{
			{ID: 1, Username: "alice", FullName: "Alice A"},
			{ID: 2, Username: "bob", FullName: "Bob B"},
		},
		FailedOUs: []string{},
	}
}

func TestDirectoryService_NotConfigured(t *testing.T) {
	svc := NewDirectoryService(nil, nil, time.Minute, nil)

	_, err := svc.ListOUs(context.Background())
	assert.ErrorIs(t, err, directory.ErrConfiguration)

	_, err = svc.ListUsers(context.Background())
	assert.ErrorIs(t, err, directory.ErrConfiguration)
}

func TestDirectoryService_ListOUs(t *testing.T) {
	searcher := &stubSearcher{ous: []string{"Sales", "IT"}}
	svc := NewDirectoryService(searcher, nil, time.Minute, nil)

	ous, err := svc.ListOUs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "IT"}, ous)
}

func TestDirectoryService_ListUsersCachesCompleteResults(t *testing.T) {
	searcher := &stubSearcher{result: sampleResult()}
	svc := NewDirectoryService(searcher, cache.NewMemoryCache[directory.SearchResult](), time.Minute, nil)
	ctx := context.Background()

	first, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Users, 2)

	second, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Users, second.Users)
	assert.Equal(t, int32(1), searcher.calls.Load())

	require.NoError(t, svc.InvalidateUsers(ctx))
	_, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestDirectoryService_PartialResultsAreNotCached(t *testing.T) {
	partial := sampleResult()
	partial.FailedOUs = []string{"OU=Broken,DC=example,DC=local"}
	searcher := &stubSearcher{result: partial}
	svc := NewDirectoryService(searcher, cache.NewMemoryCache[directory.SearchResult](), time.Minute, nil)
	ctx := context.Background()

	result, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"OU=Broken,DC=example,DC=local"}, result.FailedOUs)

	_, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestDirectoryService_SearchError(t *testing.T) {
	searcher := &stubSearcher{err: directory.ErrNoOrganizationalUnits}
	svc := NewDirectoryService(searcher, cache.NewMemoryCache[directory.SearchResult](), time.Minute, nil)

	_, err := svc.ListUsers(context.Background())
	assert.ErrorIs(t, err, directory.ErrNoOrganizationalUnits)
}

func TestDirectoryService_CacheHitSkipsSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache[directory.SearchResult](ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	searcher := &stubSearcher{result: sampleResult()}

	mockCache.EXPECT().
		Get(gomock.Any(), directoryUsersCacheKey).
		Return(*sampleResult(), nil)
	recorder.EXPECT().RecordDirectoryCacheResult(true)

	svc := NewDirectoryService(searcher, mockCache, time.Minute, recorder)
	result, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Users, 2)
	assert.Zero(t, searcher.calls.Load())
}

func TestDirectoryService_CacheFailuresDoNotFailListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache[directory.SearchResult](ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	searcher := &stubSearcher{result: sampleResult()}

	mockCache.EXPECT().
		Get(gomock.Any(), directoryUsersCacheKey).
		Return(directory.SearchResult{}, cache.ErrCacheUnavailable)
	mockCache.EXPECT().
		Set(gomock.Any(), directoryUsersCacheKey, gomock.Any(), time.Minute).
		Return(errors.New("connection refused"))
	recorder.EXPECT().RecordDirectoryCacheResult(false)
	recorder.EXPECT().RecordDirectorySearch(gomock.Any(), 2, 0)

	svc := NewDirectoryService(searcher, mockCache, time.Minute, recorder)
	result, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Users, 2)
}

func TestDirectoryService_ConcurrentMissesShareOneSearch(t *testing.T) {
	searcher := &stubSearcher{result: sampleResult(), release: make(chan struct{})}
	svc := NewDirectoryService(searcher, nil, time.Minute, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*directory.SearchResult, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.ListUsers(context.Background())
			assert.NoError(t, err)
			results[i] = r
		}()
	}

	// let every caller reach the in-flight search before it completes
	require.Eventually(t, func() bool { return searcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(searcher.release)
	wg.Wait()

	assert.Equal(t, int32(1), searcher.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Users, 2)
	}
}
