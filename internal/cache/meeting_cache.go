package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const meetingDashboardKeyPrefix = "meeting:dashboard"

// MeetingCache holds computed meeting dashboards per spreadsheet and sheet.
type MeetingCache interface {
	GetDashboard(ctx context.Context, spreadsheetID, sheet string) (*domain.MeetingDashboard, bool, error)
	SetDashboard(ctx context.Context, spreadsheetID, sheet string, dashboard *domain.MeetingDashboard) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisMeetingCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMeetingCache struct{}

func NewMeetingCache(cfg config.CacheConfig) (MeetingCache, error) {
	if !cfg.Enabled {
		return &noopMeetingCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg, cfg.MeetingTTLSeconds)
	if err != nil {
		return nil, err
	}

	return &redisMeetingCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopMeetingCache() MeetingCache {
	return &noopMeetingCache{}
}

func (c *redisMeetingCache) GetDashboard(ctx context.Context, spreadsheetID, sheet string) (*domain.MeetingDashboard, bool, error) {
	payload, err := c.client.Get(ctx, buildMeetingKey(spreadsheetID, sheet)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.MeetingDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("decode meeting dashboard cache: %w", err)
	}
	return &dashboard, true, nil
}

func (c *redisMeetingCache) SetDashboard(ctx context.Context, spreadsheetID, sheet string, dashboard *domain.MeetingDashboard) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode meeting dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, buildMeetingKey(spreadsheetID, sheet), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMeetingCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, meetingDashboardKeyPrefix, scanBatchSize)
}

func (n *noopMeetingCache) GetDashboard(ctx context.Context, spreadsheetID, sheet string) (*domain.MeetingDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopMeetingCache) SetDashboard(ctx context.Context, spreadsheetID, sheet string, dashboard *domain.MeetingDashboard) error {
	return nil
}

func (n *noopMeetingCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildMeetingKey(spreadsheetID, sheet string) string {
	hash := sha1.Sum([]byte(spreadsheetID + "|" + sheet))
	return fmt.Sprintf("%s:%s", meetingDashboardKeyPrefix, hex.EncodeToString(hash[:]))
}

func (c *redisMeetingCache) Close() error {
	return c.client.Close()
}

func (n *noopMeetingCache) Close() error {
	return nil
}
