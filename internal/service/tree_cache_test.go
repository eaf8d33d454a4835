package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBucket(t *testing.T) {
	tests := []struct {
		raw      string
		bucket   DepthBucket
		maxDepth int
		wantErr  bool
	}{
		{raw: "", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "full", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "1", bucket: BucketDepth1, maxDepth: 1},
		{raw: "2", bucket: BucketDepth2, maxDepth: 2},
		{raw: "3", bucket: BucketDepth3, maxDepth: 3},
		{raw: "4", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "9", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "10", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "250", bucket: BucketFull, maxDepth: DepthFull},
		{raw: "0", wantErr: true},
		{raw: "-10", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "deep", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("depth "+tt.raw, func(t *testing.T) {
			bucket, maxDepth, err := NormalizeBucket(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *domain.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, domain.CodeValidation, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.maxDepth, maxDepth)
		})
	}
}

func sampleProjection() []*dto.NodeResponse {
	return []*dto.NodeResponse{
		{ID: "n1", Name: "Maths", NodeType: "DOMAIN", Children: []*dto.NodeResponse{}},
	}
}

func TestTreeCacheGetOrCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("miss computes and stores", func(t *testing.T) {
		store := newFakeCache()
		tc := NewTreeCache(store, time.Minute, time.Second)

		var computes int32
		nodes, err := tc.GetOrCompute(ctx, BucketFull, func(ctx context.Context) ([]*dto.NodeResponse, error) {
			atomic.AddInt32(&computes, 1)
			return sampleProjection(), nil
		})

		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "n1", nodes[0].ID)
		assert.Equal(t, int32(1), computes)
		assert.Equal(t, 1, store.size())
	})

	t.Run("hit serves the snapshot without computing", func(t *testing.T) {
		store := newFakeCache()
		tc := NewTreeCache(store, time.Minute, time.Second)

		_, err := tc.GetOrCompute(ctx, BucketFull, func(ctx context.Context) ([]*dto.NodeResponse, error) {
			return sampleProjection(), nil
		})
		require.NoError(t, err)

		nodes, err := tc.GetOrCompute(ctx, BucketFull, func(ctx context.Context) ([]*dto.NodeResponse, error) {
			t.Fatal("compute must not run on a cache hit")
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "n1", nodes[0].ID)
	})

	t.Run("buckets are cached independently", func(t *testing.T) {
		store := newFakeCache()
		tc := NewTreeCache(store, time.Minute, time.Second)

		var computes int32
		compute := func(ctx context.Context) ([]*dto.NodeResponse, error) {
			atomic.AddInt32(&computes, 1)
			return sampleProjection(), nil
		}

		_, err := tc.GetOrCompute(ctx, BucketDepth1, compute)
		require.NoError(t, err)
		_, err = tc.GetOrCompute(ctx, BucketDepth2, compute)
		require.NoError(t, err)

		assert.Equal(t, int32(2), computes)
		assert.Equal(t, 2, store.size())
	})

	t.Run("concurrent misses share one computation", func(t *testing.T) {
		store := newFakeCache()
		tc := NewTreeCache(store, time.Minute, 5*time.Second)

		var computes int32
		release := make(chan struct{})
		compute := func(ctx context.Context) ([]*dto.NodeResponse, error) {
			atomic.AddInt32(&computes, 1)
			<-release
			return sampleProjection(), nil
		}

		const callers = 8
		var wg sync.WaitGroup
		results := make([][]*dto.NodeResponse, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = tc.GetOrCompute(ctx, BucketFull, compute)
			}(i)
		}

		// Let every caller reach the flight before releasing it
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&computes))
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Len(t, results[i], 1)
			assert.Equal(t, "n1", results[i][0].ID)
		}
	})

	t.Run("slow leader does not stall followers", func(t *testing.T) {
		store := newFakeCache()
		tc := NewTreeCache(store, time.Minute, 30*time.Millisecond)

		release := make(chan struct{})
		defer close(release)
		slow := func(ctx context.Context) ([]*dto.NodeResponse, error) {
			<-release
			return sampleProjection(), nil
		}

		leaderDone := make(chan struct{})
		go func() {
			defer close(leaderDone)
			// The leader is stuck until release; its follower-timeout
			// fallback also blocks on the same compute, so run it in a
			// goroutine and only assert the follower below.
			_, _ = tc.GetOrCompute(ctx, BucketFull, slow)
		}()
		time.Sleep(10 * time.Millisecond)

		start := time.Now()
		nodes, err := tc.GetOrCompute(ctx, BucketFull, func(ctx context.Context) ([]*dto.NodeResponse, error) {
			return sampleProjection(), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "n1", nodes[0].ID)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func TestTreeCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newFakeCache()
	tc := NewTreeCache(store, time.Minute, time.Second)

	for _, bucket := range []DepthBucket{BucketDepth1, BucketDepth2, BucketDepth3, BucketFull} {
		_, err := tc.GetOrCompute(ctx, bucket, func(ctx context.Context) ([]*dto.NodeResponse, error) {
			return sampleProjection(), nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 4, store.size())

	require.NoError(t, tc.Invalidate(ctx))

	assert.Equal(t, 0, store.size())
	assert.Equal(t, 4, store.dels)
}
