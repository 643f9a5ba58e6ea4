package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// SeatCache stores rendered seat maps in Redis. It is never consulted when
// seats are allocated, so a stale entry only affects what a passenger sees.
type SeatCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSeatCache(client redis.Cmdable, ttl time.Duration) *SeatCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &SeatCache{client: client, ttl: ttl}
}

func SeatKey(inst domain.ScheduleInstance) string {
	return fmt.Sprintf("seats:%s:%s", inst.ScheduleID, inst.JourneyDate.Format(domain.DateLayout))
}

func (c *SeatCache) Get(ctx context.Context, inst domain.ScheduleInstance) (*domain.SeatSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, SeatKey(inst)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var snap domain.SeatSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("decode seat snapshot: %w", err)
	}
	return &snap, true, nil
}

func (c *SeatCache) Set(ctx context.Context, inst domain.ScheduleInstance, snap *domain.SeatSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode seat snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SeatKey(inst), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *SeatCache) Invalidate(ctx context.Context, inst domain.ScheduleInstance) error {
	if err := c.client.Del(ctx, SeatKey(inst)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
