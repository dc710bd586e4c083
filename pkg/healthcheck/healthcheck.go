// Package healthcheck reports the state of the service's dependencies for
// the health, liveness and readiness endpoints
package healthcheck

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Check is the outcome of one dependency check
type Check struct {
	Name        string      `json:"name"`
	Status      Status      `json:"status"`
	Message     string      `json:"message,omitempty"`
	LastChecked time.Time   `json:"last_checked"`
	DurationMS  int64       `json:"duration_ms"`
	Metadata    interface{} `json:"metadata,omitempty"`
}

// Response is the full health report
type Response struct {
	Status          Status    `json:"status"`
	Version         string    `json:"version"`
	Timestamp       time.Time `json:"timestamp"`
	Checks          []Check   `json:"checks"`
	TotalDurationMS int64     `json:"total_duration_ms"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check(ctx context.Context) Check
}

// HealthCheck runs the registered checkers and caches the last report
type HealthCheck struct {
	version string
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	checkers map[string]Checker
	cacheTTL time.Duration
	cached   *Response
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:  version,
		logger:   logger.Named("healthcheck"),
		timeout:  5 * time.Second,
		now:      time.Now,
		checkers: make(map[string]Checker),
		cacheTTL: 5 * time.Second,
	}
}

// Register adds a checker under name and drops the cached report
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
	h.cached = nil
}

// SetCacheTTL sets how long a report is reused
func (h *HealthCheck) SetCacheTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheTTL = ttl
}

// Handler serves the full report; 503 when a dependency is unhealthy
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		c.JSON(httpStatus(report.Status), report)
	}
}

// LivenessHandler answers as long as the process serves requests
func (h *HealthCheck) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "version": h.version})
	}
}

// ReadinessHandler reports whether the service accepts traffic. A degraded
// cache keeps it ready since listings fall back to the database.
func (h *HealthCheck) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		if report.Status == StatusUnhealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": failing(report.Checks)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": report.Timestamp})
	}
}

// Check runs every checker in parallel under a shared timeout. Checks are
// ordered by name and the overall status is the worst one.
func (h *HealthCheck) Check(ctx context.Context) Response {
	if report, ok := h.fresh(); ok {
		return report
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	checkers := make([]Checker, len(names))
	for i, name := range names {
		checkers[i] = h.checkers[name]
	}
	h.mu.RUnlock()

	start := h.now()
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make([]Check, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, checker Checker) {
			defer wg.Done()
			checks[i] = checker.Check(checkCtx)
			checks[i].Name = names[i]
		}(i, checker)
	}
	wg.Wait()

	report := Response{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: start,
		Checks:    checks,
	}
	for _, check := range checks {
		if check.Status.rank() > report.Status.rank() {
			report.Status = check.Status
		}
		if check.Status == StatusUnhealthy {
			h.logger.Warn("Health check failed", zap.String("check", check.Name), zap.String("message", check.Message))
		}
	}
	report.TotalDurationMS = h.now().Sub(start).Milliseconds()

	h.mu.Lock()
	h.cached = &report
	h.mu.Unlock()
	return report
}

func (h *HealthCheck) fresh() (Response, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cached == nil || h.now().Sub(h.cached.Timestamp) >= h.cacheTTL {
		return Response{}, false
	}
	return *h.cached, true
}

func httpStatus(status Status) int {
	if status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func failing(checks []Check) []Check {
	out := make([]Check, 0, len(checks))
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			out = append(out, check)
		}
	}
	return out
}

// observe times probe and fills a Check from its result
func observe(name string, probe func() (Status, string, interface{})) Check {
	start := time.Now()
	status, message, metadata := probe()
	return Check{
		Name:        name,
		Status:      status,
		Message:     message,
		Metadata:    metadata,
		LastChecked: start,
		DurationMS:  time.Since(start).Milliseconds(),
	}
}

// DatabaseChecker pings the database
type DatabaseChecker struct {
	db *sql.DB
}

// NewDatabaseChecker creates a new database checker
func NewDatabaseChecker(db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Check pings the database and reports pool usage. A pool above 90% in use
// is degraded.
func (d *DatabaseChecker) Check(ctx context.Context) Check {
	return observe("database", func() (Status, string, interface{}) {
		if err := d.db.PingContext(ctx); err != nil {
			return StatusUnhealthy, err.Error(), nil
		}

		stats := d.db.Stats()
		pool := map[string]interface{}{
			"open_conns": stats.OpenConnections,
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"wait_count": stats.WaitCount,
		}
		if stats.MaxOpenConnections > 0 && stats.InUse*10 > stats.MaxOpenConnections*9 {
			return StatusDegraded, "connection pool nearly exhausted", pool
		}
		return StatusHealthy, "", pool
	})
}

// RedisChecker pings the recipe list cache
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis checker
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Check pings Redis. Failures only degrade the service.
func (r *RedisChecker) Check(ctx context.Context) Check {
	return observe("redis", func() (Status, string, interface{}) {
		if err := r.client.Ping(ctx).Err(); err != nil {
			return StatusDegraded, err.Error(), nil
		}
		stats := r.client.PoolStats()
		return StatusHealthy, "", map[string]interface{}{
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"total_conns": stats.TotalConns,
		}
	})
}

// DirectoryChecker verifies that the upload directory accepts new files
type DirectoryChecker struct {
	path string
}

// NewDirectoryChecker creates a new directory checker
func NewDirectoryChecker(path string) *DirectoryChecker {
	return &DirectoryChecker{path: path}
}

// Check creates and removes a temporary file in the directory
func (d *DirectoryChecker) Check(context.Context) Check {
	return observe("uploads", func() (Status, string, interface{}) {
		meta := map[string]interface{}{"path": d.path}
		if err := touch(d.path); err != nil {
			return StatusUnhealthy, err.Error(), meta
		}
		return StatusHealthy, "", meta
	})
}

func touch(dir string) error {
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	closeErr := f.Close()
	if err := os.Remove(name); err != nil {
		return err
	}
	return closeErr
}

// CheckFunc adapts a function to the Checker interface
type CheckFunc func(ctx context.Context) (Status, string, interface{})

// Check calls f
func (f CheckFunc) Check(ctx context.Context) Check {
	return observe("", func() (Status, string, interface{}) { return f(ctx) })
}
