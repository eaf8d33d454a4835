package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"qubitgyan/internal/cache"
	"qubitgyan/internal/domain"
	"qubitgyan/internal/dto"
	"qubitgyan/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const treeCacheService = "tree"

// DepthBucket identifies one cached projection of the content tree.
type DepthBucket string

const (
	BucketDepth1 DepthBucket = "1"
	BucketDepth2 DepthBucket = "2"
	BucketDepth3 DepthBucket = "3"
	BucketFull   DepthBucket = "full"
)

var allBuckets = []DepthBucket{BucketDepth1, BucketDepth2, BucketDepth3, BucketFull}

// NormalizeBucket maps a raw depth parameter onto a bucket. Absent or
// "full" means unbounded, depths above 3 collapse into the full bucket,
// anything else is a validation failure.
func NormalizeBucket(raw string) (DepthBucket, int, error) {
	if raw == "" || raw == "full" {
		return BucketFull, DepthFull, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", 0, domain.NewValidationError(fmt.Sprintf("invalid depth %q", raw))
	}
	switch n {
	case 1:
		return BucketDepth1, 1, nil
	case 2:
		return BucketDepth2, 2, nil
	case 3:
		return BucketDepth3, 3, nil
	}
	return BucketFull, DepthFull, nil
}

// TreeCache keeps one JSON snapshot per depth bucket and collapses
// concurrent rebuilds of the same bucket into a single computation.
type TreeCache struct {
	cache           domain.Cache
	ttl             time.Duration
	followerTimeout time.Duration
	group           singleflight.Group
}

func NewTreeCache(c domain.Cache, ttl, followerTimeout time.Duration) *TreeCache {
	return &TreeCache{
		cache:           c,
		ttl:             ttl,
		followerTimeout: followerTimeout,
	}
}

func bucketKey(bucket DepthBucket) string {
	return cache.GenerateCacheKey(treeCacheService, "forest", string(bucket))
}

// GetOrCompute returns the cached projection for the bucket, or rebuilds
// it via compute. Concurrent callers of the same bucket share one rebuild;
// a follower that waits longer than the configured timeout gives up on the
// shared result and computes directly so one slow leader cannot stall
// every reader.
func (t *TreeCache) GetOrCompute(ctx context.Context, bucket DepthBucket, compute func(ctx context.Context) ([]*dto.NodeResponse, error)) ([]*dto.NodeResponse, error) {
	key := bucketKey(bucket)

	cached, err := t.cache.Get(ctx, key)
	if err == nil {
		var nodes []*dto.NodeResponse
		if err := json.Unmarshal([]byte(cached), &nodes); err == nil {
			return nodes, nil
		}
		logger.Get().Warn("discarding undecodable tree snapshot", zap.String("key", key))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("tree cache read failed, rebuilding", zap.String("key", key), zap.Error(err))
	}

	ch := t.group.DoChan(key, func() (interface{}, error) {
		// The computation is shared across callers, so it must not die
		// with whichever caller happened to start it.
		return t.computeAndStore(context.WithoutCancel(ctx), key, compute)
	})

	timer := time.NewTimer(t.followerTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*dto.NodeResponse), nil
	case <-timer.C:
		logger.Get().Warn("shared tree rebuild too slow, computing directly", zap.String("key", key))
		return compute(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *TreeCache) computeAndStore(ctx context.Context, key string, compute func(ctx context.Context) ([]*dto.NodeResponse, error)) ([]*dto.NodeResponse, error) {
	nodes, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(nodes)
	if err != nil {
		return nil, domain.NewInternalError("failed to encode tree snapshot", err)
	}
	if err := t.cache.Set(ctx, key, string(payload), t.ttl); err != nil {
		logger.Get().Warn("tree snapshot store failed, serving computed result", zap.String("key", key), zap.Error(err))
	}
	return nodes, nil
}

// Invalidate drops every bucket's snapshot. Called after each committed
// tree mutation, before the mutation is acknowledged.
func (t *TreeCache) Invalidate(ctx context.Context) error {
	for _, bucket := range allBuckets {
		if err := t.cache.Delete(ctx, bucketKey(bucket)); err != nil {
			logger.Get().Error("tree cache invalidation failed", zap.String("bucket", string(bucket)), zap.Error(err))
			return domain.NewStoreUnavailableError("cache invalidation failed", err)
		}
	}
	return nil
}
