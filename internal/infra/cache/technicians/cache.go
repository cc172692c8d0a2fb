// Package technicians caches the technician roster in Redis.
// The roster is read-only to the scheduler, so entries simply expire.
package technicians

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

const (
	cacheName = "technicians"
	// Key ключ списка техников в Redis
	Key = "scheduler:technicians:all"
)

type technicianDTO struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Categories []string   `json:"categories"`
	Capacity   [7]float64 `json:"capacity"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Cache read-through кеш техников
type Cache struct {
	source  Source
	client  *redis.Client
	ttl     time.Duration
	metrics MetricsRecorder
	logger  Logger
}

// New создает кеш. При client == nil или ttl <= 0 все запросы идут в source.
func New(source Source, client *redis.Client, ttl time.Duration, metrics MetricsRecorder, logger Logger) *Cache {
	return &Cache{source: source, client: client, ttl: ttl, metrics: metrics, logger: logger}
}

// GetAll возвращает техников из кеша или из источника
func (c *Cache) GetAll(ctx context.Context) ([]*domain.Technician, error) {
	if list, ok := c.read(ctx); ok {
		c.record(true)
		return list, nil
	}
	c.record(false)

	list, err := c.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.write(ctx, list)
	return list, nil
}

func (c *Cache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

func (c *Cache) read(ctx context.Context) ([]*domain.Technician, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.client.Get(ctx, Key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("TechniciansCache: read failed: %v", err)
		}
		return nil, false
	}

	var dtos []technicianDTO
	if err := json.Unmarshal(val, &dtos); err != nil {
		c.logger.Warn("TechniciansCache: corrupted entry: %v", err)
		return nil, false
	}

	list := make([]*domain.Technician, 0, len(dtos))
	for _, d := range dtos {
		list = append(list, &domain.Technician{
			ID:         d.ID,
			Name:       d.Name,
			Categories: d.Categories,
			Capacity:   domain.WeeklyCapacity(d.Capacity),
			Active:     d.Active,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	return list, true
}

func (c *Cache) write(ctx context.Context, list []*domain.Technician) {
	if !c.enabled() {
		return
	}
	dtos := make([]technicianDTO, 0, len(list))
	for _, t := range list {
		dtos = append(dtos, technicianDTO{
			ID:         t.ID,
			Name:       t.Name,
			Categories: t.Categories,
			Capacity:   t.Capacity,
			Active:     t.Active,
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
		})
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("TechniciansCache: write failed: %v", err)
	}
}

func (c *Cache) record(hit bool) {
	if c.metrics != nil && c.enabled() {
		c.metrics.IncCacheLookup(cacheName, hit)
	}
}
