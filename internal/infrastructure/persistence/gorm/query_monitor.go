package gorm

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	queryStartKey = "query_monitor:start"

	// DefaultSlowQueryThreshold marks queries logged as slow
	DefaultSlowQueryThreshold = 100 * time.Millisecond
)

// QueryStats holds aggregated query statistics
type QueryStats struct {
	TotalQueries   int64         `json:"total_queries"`
	SlowQueries    int64         `json:"slow_queries"`
	FailedQueries  int64         `json:"failed_queries"`
	TotalQueryTime time.Duration `json:"total_query_time"`
}

// QueryMonitor is a GORM plugin that times every statement, exports the
// durations to Prometheus and logs slow queries
type QueryMonitor struct {
	logger    *zap.Logger
	threshold time.Duration
	duration  *prometheus.HistogramVec
	now       func() time.Time

	mu    sync.Mutex
	stats QueryStats
}

var _ gorm.Plugin = (*QueryMonitor)(nil)

// NewQueryMonitor creates a new query monitor. The histogram is registered
// with registerer.
func NewQueryMonitor(logger *zap.Logger, registerer prometheus.Registerer, threshold time.Duration) (*QueryMonitor, error) {
	if threshold <= 0 {
		threshold = DefaultSlowQueryThreshold
	}

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database statement duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table", "status"},
	)
	if err := registerer.Register(duration); err != nil {
		return nil, err
	}

	return &QueryMonitor{
		logger:    logger.Named("query-monitor"),
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
	}, nil
}

// Name implements gorm.Plugin
func (qm *QueryMonitor) Name() string {
	return "query_monitor"
}

// Initialize registers the timing callbacks around every operation
func (qm *QueryMonitor) Initialize(db *gorm.DB) error {
	callbacks := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create", db.Callback().Create().Before("gorm:create").Register, db.Callback().Create().After("gorm:create").Register},
		{"query", db.Callback().Query().Before("gorm:query").Register, db.Callback().Query().After("gorm:query").Register},
		{"update", db.Callback().Update().Before("gorm:update").Register, db.Callback().Update().After("gorm:update").Register},
		{"delete", db.Callback().Delete().Before("gorm:delete").Register, db.Callback().Delete().After("gorm:delete").Register},
		{"row", db.Callback().Row().Before("gorm:row").Register, db.Callback().Row().After("gorm:row").Register},
		{"raw", db.Callback().Raw().Before("gorm:raw").Register, db.Callback().Raw().After("gorm:raw").Register},
	}

	for _, cb := range callbacks {
		if err := cb.before("query_monitor:before_"+cb.operation, qm.beforeQuery); err != nil {
			return err
		}
		if err := cb.after("query_monitor:after_"+cb.operation, qm.afterQuery(cb.operation)); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the statistics collected since startup
func (qm *QueryMonitor) Stats() QueryStats {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	return qm.stats
}

func (qm *QueryMonitor) beforeQuery(db *gorm.DB) {
	db.InstanceSet(queryStartKey, qm.now())
}

func (qm *QueryMonitor) afterQuery(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		value, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := value.(time.Time)
		if !ok {
			return
		}
		elapsed := qm.now().Sub(start)

		status := "ok"
		if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
			status = "error"
		}
		qm.duration.WithLabelValues(operation, db.Statement.Table, status).Observe(elapsed.Seconds())

		qm.mu.Lock()
		qm.stats.TotalQueries++
		qm.stats.TotalQueryTime += elapsed
		if status == "error" {
			qm.stats.FailedQueries++
		}
		slow := elapsed > qm.threshold
		if slow {
			qm.stats.SlowQueries++
		}
		qm.mu.Unlock()

		if slow {
			qm.logger.Warn("Slow query detected",
				zap.Duration("duration", elapsed),
				zap.String("operation", operation),
				zap.String("table", db.Statement.Table),
				zap.String("sql", sanitizeSQL(db.Statement.SQL.String())),
				zap.Error(db.Error),
			)
		}
	}
}

// sanitizeSQL drops quoted literals and bounds the length for logging
func sanitizeSQL(sql string) string {
	var b strings.Builder
	inLiteral := false
	for _, r := range sql {
		if r == '\'' {
			if !inLiteral {
				b.WriteRune('?')
			}
			inLiteral = !inLiteral
			continue
		}
		if !inLiteral {
			b.WriteRune(r)
		}
	}

	sanitized := b.String()
	if len(sanitized) > 500 {
		sanitized = sanitized[:500] + "..."
	}
	return sanitized
}
