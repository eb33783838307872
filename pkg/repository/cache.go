package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DefiantLabs/bridge-market-data/pkg/model"
	"github.com/redis/go-redis/v9"
)

const (
	marketChannel = "pub/market"
	snapshotKey   = "c/market_snapshot"
)

type SnapshotCache interface {
	SetSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error
	GetSnapshot(ctx context.Context) (*model.MarketSnapshot, error)
	PublishSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache stores snapshots for ttl. A zero ttl keeps them until overwritten.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *Cache) SetSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error {
	res, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, snapshotKey, string(res), s.ttl).Err()
}

// GetSnapshot returns nil without an error when nothing is cached.
func (s *Cache) GetSnapshot(ctx context.Context) (*model.MarketSnapshot, error) {
	res, err := s.rdb.Get(ctx, snapshotKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot model.MarketSnapshot
	if err := json.Unmarshal([]byte(res), &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *Cache) PublishSnapshot(ctx context.Context, snapshot *model.MarketSnapshot) error {
	res, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, marketChannel, res).Err()
}
