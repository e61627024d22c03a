package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/sqlstage/internal/logger"
)

// pingTimeout bounds a single health ping.
const pingTimeout = 5 * time.Second

// healthChecker pings the pool at a fixed interval so a dead backend shows up
// before the next insert fails on it.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	lastErr  error
	lastPing time.Time
}

func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (h *healthChecker) start() {
	h.wg.Add(1)
	go h.run()
}

func (h *healthChecker) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.ping()
		case <-h.stop:
			return
		}
	}
}

func (h *healthChecker) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("database health check failed", "error", err, "interval", h.interval)
		return
	}
	h.logger.Debug("database health check passed", "interval", h.interval)
}

// shutdown stops the loop and waits for an in-flight ping. Later calls are
// no-ops.
func (h *healthChecker) shutdown() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.wg.Wait()
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
	})
}

// status reports the latest ping. Until the first ping completes the pool
// is not reported healthy.
func (h *healthChecker) status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthStatus{
		Enabled:   !h.stopped,
		Healthy:   !h.lastPing.IsZero() && h.lastErr == nil,
		LastError: h.lastErr,
		LastCheck: h.lastPing,
	}
}

// HealthStatus is the outcome of the most recent background ping. Enabled is
// false when no checker was configured or the DB has been closed.
type HealthStatus struct {
	Enabled   bool
	Healthy   bool
	LastError error
	LastCheck time.Time
}

// WithHealthCheck pings the database every interval in the background.
// Close stops the checker. A non-positive interval disables it.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.healthInterval = interval
	}
}

// startHealthCheck runs after all options so the checker logs through the
// configured logger.
func (db *DB) startHealthCheck() {
	if db.healthInterval <= 0 || db.health != nil {
		return
	}
	db.health = newHealthChecker(db.sqlDB, db.logger, db.healthInterval)
	db.health.start()
}

// Health reports the latest background health check. Without WithHealthCheck
// nothing is ever checked, so the status is neither enabled nor healthy.
func (db *DB) Health() HealthStatus {
	if db.health == nil {
		return HealthStatus{}
	}
	return db.health.status()
}
