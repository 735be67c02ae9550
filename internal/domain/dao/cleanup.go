package dao

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// Cleanup bounds. Past the warn threshold the pass still runs but is
// logged as slow; past the hard limit it is skipped entirely so a chart
// delete cannot fan out into an unbounded dashboard rewrite.
const (
	cleanupWarnThreshold = 100
	cleanupHardLimit     = 1000
)

// CleanupDashboardMetadata removes every reference to the deleted chart
// ids from the json_metadata of affected dashboards. Only json_metadata
// is written back; position_json and the association rows are handled by
// the relational cascade. Returns the number of dashboards rewritten.
func (d *DashboardDAO) CleanupDashboardMetadata(ctx context.Context, chartIDs []int) (int, error) {
	if len(chartIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := d.DB().WithContext(ctx).
		Table("dashboards").
		Joins("JOIN dashboard_slices ON dashboard_slices.dashboard_id = dashboards.id").
		Where("dashboard_slices.slice_id IN ?", chartIDs).
		Distinct("dashboards.id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	// Past the hard limit the cleanup is skipped, not failed: the chart
	// delete still goes through, with the stale references logged.
	if count > cleanupHardLimit {
		d.log.Error("skipping dashboard metadata cleanup, too many dashboards affected",
			zap.Int64("dashboards", count),
			zap.Int("limit", cleanupHardLimit),
			zap.Ints("chart_ids", chartIDs))
		return 0, nil
	}
	if count > cleanupWarnThreshold {
		d.log.Warn("dashboard metadata cleanup may take some time",
			zap.Int64("dashboards", count),
			zap.Ints("chart_ids", chartIDs))
	}

	var rows []struct {
		ID           int
		JSONMetadata string
	}
	err = d.DB().WithContext(ctx).
		Table("dashboards").
		Select("dashboards.id", "dashboards.json_metadata").
		Joins("JOIN dashboard_slices ON dashboard_slices.dashboard_id = dashboards.id").
		Where("dashboard_slices.slice_id IN ?", chartIDs).
		Distinct().
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	rewritten := 0
	for _, row := range rows {
		updated, changed, err := scrubChartReferences(row.JSONMetadata, chartIDs)
		if err != nil {
			d.log.Warn("skipping dashboard with malformed json_metadata during cleanup",
				zap.Int("dashboard_id", row.ID),
				zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		err = d.DB().WithContext(ctx).
			Model(&entity.Dashboard{}).
			Where("id = ?", row.ID).
			UpdateColumn("json_metadata", updated).Error
		if err != nil {
			return rewritten, err
		}
		rewritten++
	}
	return rewritten, nil
}

// scrubChartReferences removes the chart ids from every metadata field
// that can reference charts. It is a pure string-to-string rewrite and
// reports whether anything changed.
func scrubChartReferences(raw string, chartIDs []int) (string, bool, error) {
	if raw == "" {
		return raw, false, nil
	}
	var md map[string]any
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return raw, false, err
	}

	removed := make(map[int]struct{}, len(chartIDs))
	removedKeys := make(map[string]struct{}, len(chartIDs))
	for _, id := range chartIDs {
		removed[id] = struct{}{}
		removedKeys[strconv.Itoa(id)] = struct{}{}
	}

	changed := false

	if expanded, ok := md["expanded_slices"].(map[string]any); ok {
		if dropStringIntKeys(expanded, removedKeys) {
			changed = true
		}
	}

	if immune, ok := md["timed_refresh_immune_slices"].([]any); ok {
		if pruned, dropped := dropIntMembers(immune, removed); dropped {
			md["timed_refresh_immune_slices"] = pruned
			changed = true
		}
	}

	if scopes, ok := md["filter_scopes"].(map[string]any); ok {
		if dropStringIntKeys(scopes, removedKeys) {
			changed = true
		}
		for _, raw := range scopes {
			if scrubImmuneLists(raw, removed) {
				changed = true
			}
		}
	}

	// default_filters is a JSON document stored inside a string field.
	if filters, ok := md["default_filters"].(string); ok && filters != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(filters), &parsed); err == nil {
			if dropStringIntKeys(parsed, removedKeys) {
				if encoded, err := json.Marshal(parsed); err == nil {
					md["default_filters"] = string(encoded)
					changed = true
				}
			}
		}
	}

	if configs, ok := md["native_filter_configuration"].([]any); ok {
		for _, raw := range configs {
			config, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if scope, ok := config["scope"].(map[string]any); ok {
				if excluded, ok := scope["excluded"].([]any); ok {
					if pruned, dropped := dropIntMembers(excluded, removed); dropped {
						scope["excluded"] = pruned
						changed = true
					}
				}
			}
		}
	}

	if chartConfig, ok := md["chart_configuration"].(map[string]any); ok {
		if dropStringIntKeys(chartConfig, removedKeys) {
			changed = true
		}
		for _, raw := range chartConfig {
			config, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if scope, ok := config["crossFilters"].(map[string]any); ok {
				if excluded, ok := scope["scope"].(map[string]any); ok {
					if list, ok := excluded["excluded"].([]any); ok {
						if pruned, dropped := dropIntMembers(list, removed); dropped {
							excluded["excluded"] = pruned
							changed = true
						}
					}
				}
			}
		}
	}

	if globalConfig, ok := md["global_chart_configuration"].(map[string]any); ok {
		if scope, ok := globalConfig["scope"].(map[string]any); ok {
			if excluded, ok := scope["excluded"].([]any); ok {
				if pruned, dropped := dropIntMembers(excluded, removed); dropped {
					scope["excluded"] = pruned
					changed = true
				}
			}
		}
	}

	if !changed {
		return raw, false, nil
	}
	encoded, err := json.Marshal(md)
	if err != nil {
		return raw, false, err
	}
	return string(encoded), true, nil
}

// scrubImmuneLists prunes the removed ids out of every "immune" list in a
// filter scope subtree. Scopes nest the list at varying depths, sometimes
// directly under the scope key and sometimes per field, so the whole
// subtree is walked.
func scrubImmuneLists(node any, removed map[int]struct{}) bool {
	changed := false
	switch v := node.(type) {
	case map[string]any:
		if immune, ok := v["immune"].([]any); ok {
			if pruned, dropped := dropIntMembers(immune, removed); dropped {
				v["immune"] = pruned
				changed = true
			}
		}
		for key, inner := range v {
			if key == "immune" {
				continue
			}
			if scrubImmuneLists(inner, removed) {
				changed = true
			}
		}
	case []any:
		for _, inner := range v {
			if scrubImmuneLists(inner, removed) {
				changed = true
			}
		}
	}
	return changed
}

// dropStringIntKeys deletes entries whose key is the decimal rendering of
// a removed id. Mutates the map in place.
func dropStringIntKeys(m map[string]any, removedKeys map[string]struct{}) bool {
	dropped := false
	for key := range m {
		if _, gone := removedKeys[key]; gone {
			delete(m, key)
			dropped = true
		}
	}
	return dropped
}

// dropIntMembers filters removed ids out of a JSON number list.
func dropIntMembers(list []any, removed map[int]struct{}) ([]any, bool) {
	out := make([]any, 0, len(list))
	dropped := false
	for _, raw := range list {
		if id, ok := asInt(raw); ok {
			if _, gone := removed[id]; gone {
				dropped = true
				continue
			}
		}
		out = append(out, raw)
	}
	return out, dropped
}
