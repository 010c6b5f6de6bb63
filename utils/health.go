package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HealthStatus represents current status of external services.
// Nil pointers mean the dependency is not configured.
type HealthStatus struct {
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     *bool     `json:"redis,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every configured dependency answered.
func (h HealthStatus) Healthy() bool {
	if h.Mongo != nil && !*h.Mongo {
		return false
	}
	if h.Redis != nil && !*h.Redis {
		return false
	}
	return true
}

// HealthMonitor periodically pings the external services and keeps the latest snapshot.
type HealthMonitor struct {
	redis    *redis.Client
	mongo    *mongo.Client
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

// NewHealthMonitor creates a monitor. Either client may be nil.
func NewHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &HealthMonitor{
		redis:    redisClient,
		mongo:    mongoClient,
		interval: interval,
		logger:   logger.Named("health"),
	}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every configured dependency once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{CheckedAt: time.Now()}
	if m.redis != nil {
		ok := m.redis.Ping(ctx).Err() == nil
		status.Redis = &ok
	}
	if m.mongo != nil {
		ok := m.mongo.Ping(ctx, nil) == nil
		status.Mongo = &ok
	}
	if !status.Healthy() {
		m.logger.Warn("Dependency health check failed", zap.Any("status", status))
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start runs Check on every tick until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
