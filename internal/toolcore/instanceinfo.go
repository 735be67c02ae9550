package toolcore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
)

// CountingDAO is the per-entity surface InstanceInfoCore composes.
type CountingDAO interface {
	EntityName() string
	Count(ctx context.Context, filters []dao.ColumnOperatorFilter, opts ...dao.QueryOption) (int64, error)
	FilterableColumnsAndOperators() map[string][]dao.ColumnOperator
}

// MetricCalculator derives one custom metric from the assembled counts.
// Returning nil omits the metric from the summary.
type MetricCalculator func(ctx context.Context, baseCounts map[string]int64, timeMetrics map[string]map[string]int64, daos map[string]CountingDAO) (any, error)

// InstanceInfoCore assembles a whole-instance summary from a set of DAOs:
// per-entity totals, per-window created/changed counts and custom
// metrics.
type InstanceInfoCore struct {
	daos        map[string]CountingDAO
	calculators map[string]MetricCalculator
	windows     map[string]int
	log         *zap.Logger
}

// NewInstanceInfoCore wires the summary core. windows maps a label to a
// number of days (e.g. "last_7_days" to 7).
func NewInstanceInfoCore(daos map[string]CountingDAO, calculators map[string]MetricCalculator, windows map[string]int, log *zap.Logger) *InstanceInfoCore {
	return &InstanceInfoCore{
		daos:        daos,
		calculators: calculators,
		windows:     windows,
		log:         log,
	}
}

// InstanceInfo is the assembled summary record.
type InstanceInfo struct {
	Counts map[string]int64 `json:"counts"`
	// TimeMetrics is keyed by window label, then by "<entity>_created"
	// and "<entity>_changed".
	TimeMetrics map[string]map[string]int64 `json:"time_metrics"`
	Metrics     map[string]any              `json:"metrics,omitempty"`
	Timestamp   time.Time                   `json:"timestamp"`
}

// Run assembles the summary. Calculator failures are logged and omitted,
// never fatal; DAO count failures are.
func (c *InstanceInfoCore) Run(ctx context.Context) (*InstanceInfo, error) {
	counts := make(map[string]int64, len(c.daos))
	for name, d := range c.daos {
		count, err := d.Count(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("count failed for %s: %w", name, err)
		}
		counts[name] = count
	}

	timeMetrics := make(map[string]map[string]int64, len(c.windows))
	for label, days := range c.windows {
		since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
		windowCounts := map[string]int64{}
		for name, d := range c.daos {
			columns := d.FilterableColumnsAndOperators()
			if _, ok := columns["created_on"]; ok {
				count, err := d.Count(ctx, []dao.ColumnOperatorFilter{
					{Col: "created_on", Opr: dao.OpGte, Value: since},
				})
				if err != nil {
					return nil, fmt.Errorf("created count failed for %s in %s: %w", name, label, err)
				}
				windowCounts[name+"_created"] = count
			}
			if _, ok := columns["changed_on"]; ok {
				count, err := d.Count(ctx, []dao.ColumnOperatorFilter{
					{Col: "changed_on", Opr: dao.OpGte, Value: since},
				})
				if err != nil {
					return nil, fmt.Errorf("changed count failed for %s in %s: %w", name, label, err)
				}
				windowCounts[name+"_changed"] = count
			}
		}
		timeMetrics[label] = windowCounts
	}

	metrics := map[string]any{}
	for name, calc := range c.calculators {
		value, err := calc(ctx, counts, timeMetrics, c.daos)
		if err != nil {
			c.log.Warn("instance metric calculator failed",
				zap.String("metric", name),
				zap.Error(err))
			continue
		}
		if value == nil {
			continue
		}
		metrics[name] = value
	}

	return &InstanceInfo{
		Counts:      counts,
		TimeMetrics: timeMetrics,
		Metrics:     metrics,
		Timestamp:   time.Now().UTC(),
	}, nil
}
