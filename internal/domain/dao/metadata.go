package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// Position-graph sentinels. Node ids contain the substring of their type
// (CHART-xxxx, ROW-xxxx, ...); the two fixed nodes anchor the tree.
const (
	PositionVersionKey   = "DASHBOARD_VERSION_KEY"
	PositionVersionValue = "v2"
	PositionRootID       = "ROOT_ID"
	PositionGridID       = "GRID_ID"

	chartNodeMarker = "CHART-"
	tabNodeMarker   = "TAB-"
)

// TabInfo is one TAB node extracted from a dashboard's position graph.
type TabInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parent_id,omitempty"`
}

// GetTabsForDashboard extracts the TAB nodes from the dashboard layout.
func (d *DashboardDAO) GetTabsForDashboard(ctx context.Context, dashboardID int) ([]TabInfo, error) {
	dash, err := d.FindByID(ctx, dashboardID)
	if err != nil || dash == nil {
		return nil, err
	}
	if dash.PositionJSON == "" {
		return []TabInfo{}, nil
	}
	var positions map[string]any
	if err := json.Unmarshal([]byte(dash.PositionJSON), &positions); err != nil {
		return nil, fmt.Errorf("dashboard %d has malformed position_json: %w", dashboardID, err)
	}

	tabs := []TabInfo{}
	for nodeID, raw := range positions {
		if !strings.Contains(nodeID, tabNodeMarker) {
			continue
		}
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		tab := TabInfo{ID: nodeID}
		if meta, ok := node["meta"].(map[string]any); ok {
			if text, ok := meta["text"].(string); ok {
				tab.Title = text
			}
		}
		if parents, ok := node["parents"].([]any); ok && len(parents) > 0 {
			if parent, ok := parents[len(parents)-1].(string); ok {
				tab.ParentID = parent
			}
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// SetDashboardMetadata rewrites the dashboard's position_json and
// json_metadata from the supplied data, normalizing the managed keys and
// optionally remapping slice ids after a clone. It mutates the entity;
// the caller persists it.
func (d *DashboardDAO) SetDashboardMetadata(dash *entity.Dashboard, data map[string]any, oldToNewSliceIDs map[int]int) error {
	if positions, ok := data["positions"].(map[string]any); ok {
		if _, present := positions[PositionVersionKey]; !present {
			positions[PositionVersionKey] = PositionVersionValue
		}
		encoded, err := json.Marshal(positions)
		if err != nil {
			return fmt.Errorf("failed to encode positions: %w", err)
		}
		dash.PositionJSON = string(encoded)
	}

	md := map[string]any{}
	if dash.JSONMetadata != "" {
		if err := json.Unmarshal([]byte(dash.JSONMetadata), &md); err != nil {
			return fmt.Errorf("dashboard %d has malformed json_metadata: %w", dash.ID, err)
		}
	}

	md["timed_refresh_immune_slices"] = intListOr(data["timed_refresh_immune_slices"])
	md["expanded_slices"] = mapOr(data["expanded_slices"])
	md["refresh_frequency"] = numberOr(data["refresh_frequency"], 0)
	md["default_filters"] = stringOr(data["default_filters"], "{}")
	md["filter_scopes"] = mapOr(data["filter_scopes"])
	md["color_namespace"] = data["color_namespace"]
	md["color_scheme"] = data["color_scheme"]
	md["color_scheme_domain"] = listOr(data["color_scheme_domain"])
	md["label_colors"] = mapOr(data["label_colors"])
	md["shared_label_colors"] = listOr(data["shared_label_colors"])
	md["map_label_colors"] = mapOr(data["map_label_colors"])
	md["cross_filters_enabled"] = boolOr(data["cross_filters_enabled"], true)
	if nativeFilters, ok := data["native_filter_configuration"]; ok {
		md["native_filter_configuration"] = nativeFilters
	}
	if chartConfig, ok := data["chart_configuration"]; ok {
		md["chart_configuration"] = chartConfig
	}
	if globalConfig, ok := data["global_chart_configuration"]; ok {
		md["global_chart_configuration"] = globalConfig
	}

	if len(oldToNewSliceIDs) > 0 {
		remapMetadataSliceIDs(md, oldToNewSliceIDs)
	}

	encoded, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to encode json_metadata: %w", err)
	}
	dash.JSONMetadata = string(encoded)
	return nil
}

// CopyDashboardParams shapes a dashboard copy request.
type CopyDashboardParams struct {
	DashboardTitle  string
	CSS             string
	DuplicateSlices bool
	Positions       map[string]any
	Metadata        map[string]any
}

// CopyDashboard creates a new dashboard from an original, optionally
// cloning its slices and remapping their ids throughout the layout and
// metadata.
func (d *DashboardDAO) CopyDashboard(ctx context.Context, original *entity.Dashboard, params CopyDashboardParams) (*entity.Dashboard, error) {
	positions := params.Positions
	if positions == nil && original.PositionJSON != "" {
		positions = map[string]any{}
		if err := json.Unmarshal([]byte(original.PositionJSON), &positions); err != nil {
			return nil, fmt.Errorf("dashboard %d has malformed position_json: %w", original.ID, err)
		}
	}

	charts, err := d.GetChartsForDashboard(ctx, original.ID)
	if err != nil {
		return nil, err
	}

	oldToNew := map[int]int{}
	attached := charts
	if params.DuplicateSlices {
		attached = make([]*entity.Slice, 0, len(charts))
		for _, chart := range charts {
			clone := *chart
			clone.ID = 0
			clone.UUID = uuid.NewString()
			clone.SliceName = chart.SliceName
			if actor := ActorFromContext(ctx); !actor.IsAnonymous() {
				createdBy := actor.ID
				clone.CreatedByID = &createdBy
			}
			clone.Owners = nil
			clone.Dashboards = nil
			if err := d.DB().WithContext(ctx).Create(&clone).Error; err != nil {
				return nil, err
			}
			oldToNew[chart.ID] = clone.ID
			attached = append(attached, &clone)
		}
		if positions != nil {
			remapPositionChartIDs(positions, oldToNew, attached)
		}
	}

	copied := &entity.Dashboard{
		UUID:           uuid.NewString(),
		DashboardTitle: params.DashboardTitle,
		CSS:            params.CSS,
		JSONMetadata:   original.JSONMetadata,
	}
	if actor := ActorFromContext(ctx); !actor.IsAnonymous() {
		createdBy := actor.ID
		copied.CreatedByID = &createdBy
	}

	data := params.Metadata
	if data == nil {
		data = map[string]any{}
		if original.JSONMetadata != "" {
			if err := json.Unmarshal([]byte(original.JSONMetadata), &data); err != nil {
				return nil, fmt.Errorf("dashboard %d has malformed json_metadata: %w", original.ID, err)
			}
		}
	}
	if positions != nil {
		data["positions"] = positions
	}
	if err := d.SetDashboardMetadata(copied, data, oldToNew); err != nil {
		return nil, err
	}

	if err := d.DB().WithContext(ctx).Create(copied).Error; err != nil {
		return nil, err
	}
	for _, chart := range attached {
		if err := d.DB().WithContext(ctx).Model(copied).Association("Slices").Append(chart); err != nil {
			return nil, err
		}
	}
	return copied, nil
}

// remapPositionChartIDs rewrites meta.chartId and meta.uuid on every CHART
// node after a slice clone.
func remapPositionChartIDs(positions map[string]any, oldToNew map[int]int, clones []*entity.Slice) {
	uuidByID := map[int]string{}
	for _, clone := range clones {
		uuidByID[clone.ID] = clone.UUID
	}
	for nodeID, raw := range positions {
		if !strings.Contains(nodeID, chartNodeMarker) {
			continue
		}
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		meta, ok := node["meta"].(map[string]any)
		if !ok {
			continue
		}
		oldID, ok := asInt(meta["chartId"])
		if !ok {
			continue
		}
		newID, ok := oldToNew[oldID]
		if !ok {
			continue
		}
		meta["chartId"] = newID
		if u, ok := uuidByID[newID]; ok {
			meta["uuid"] = u
		}
	}
}

// remapMetadataSliceIDs rewrites slice-id keyed metadata after a clone.
func remapMetadataSliceIDs(md map[string]any, oldToNew map[int]int) {
	if expanded, ok := md["expanded_slices"].(map[string]any); ok {
		md["expanded_slices"] = remapStringIntKeys(expanded, oldToNew)
	}
	if scopes, ok := md["filter_scopes"].(map[string]any); ok {
		remapped := remapStringIntKeys(scopes, oldToNew)
		for _, raw := range remapped {
			scope, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if immune, ok := scope["immune"].([]any); ok {
				scope["immune"] = remapIntList(immune, oldToNew)
			}
		}
		md["filter_scopes"] = remapped
	}
	if immune, ok := md["timed_refresh_immune_slices"].([]any); ok {
		md["timed_refresh_immune_slices"] = remapIntList(immune, oldToNew)
	}
	if filters, ok := md["default_filters"].(string); ok && filters != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(filters), &parsed); err == nil {
			remapped := remapStringIntKeys(parsed, oldToNew)
			if encoded, err := json.Marshal(remapped); err == nil {
				md["default_filters"] = string(encoded)
			}
		}
	}
}

func remapStringIntKeys(m map[string]any, oldToNew map[int]int) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if oldID, err := strconv.Atoi(key); err == nil {
			if newID, ok := oldToNew[oldID]; ok {
				out[strconv.Itoa(newID)] = value
				continue
			}
		}
		out[key] = value
	}
	return out
}

func remapIntList(list []any, oldToNew map[int]int) []any {
	out := make([]any, 0, len(list))
	for _, raw := range list {
		if id, ok := asInt(raw); ok {
			if newID, found := oldToNew[id]; found {
				out = append(out, newID)
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}

// asInt accepts the numeric shapes JSON decoding produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func mapOr(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func listOr(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{}
}

func intListOr(v any) []any {
	l, ok := v.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(l))
	for _, raw := range l {
		if id, ok := asInt(raw); ok {
			out = append(out, id)
		}
	}
	return out
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func numberOr(v any, fallback int) any {
	if n, ok := asInt(v); ok {
		return n
	}
	return fallback
}

func boolOr(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}
