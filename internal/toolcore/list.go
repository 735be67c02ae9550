// Package toolcore implements the generic cores the API surface is
// assembled from: a list core, a single-record lookup core and an
// instance summary core. Each core is configured with DAOs and
// serializers at wiring time and exposes one operation.
package toolcore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// RowSerializer renders one entity row into the response shape.
type RowSerializer[T any] func(row *T) map[string]any

// ListDAO is the listing surface ListCore drives.
type ListDAO[T any] interface {
	List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[T], error)
}

// ListCore exposes one paginated, filterable list operation over a DAO.
type ListCore[T any] struct {
	dao           ListDAO[T]
	serialize     RowSerializer[T]
	searchColumns []string
	defaultOrder  string
}

// NewListCore wires a list core. searchColumns declares which columns the
// free-text search spans; defaultOrder overrides the DAO's order column
// when set.
func NewListCore[T any](d ListDAO[T], serialize RowSerializer[T], searchColumns []string, defaultOrder string) *ListCore[T] {
	return &ListCore[T]{
		dao:           d,
		serialize:     serialize,
		searchColumns: searchColumns,
		defaultOrder:  defaultOrder,
	}
}

// ListRequest is the raw inbound shape of one list call. Filters may be a
// JSON string or already-parsed triples.
type ListRequest struct {
	Filters        any      `json:"filters,omitempty"`
	Search         string   `json:"search,omitempty"`
	SelectColumns  []string `json:"select_columns,omitempty"`
	OrderColumn    string   `json:"order_column,omitempty"`
	OrderDirection string   `json:"order_direction,omitempty"`
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
}

// Pagination is the nested pagination record of a list response.
type Pagination struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ListResponse is the assembled result of one list call.
type ListResponse struct {
	Count            int                        `json:"count"`
	TotalCount       int64                      `json:"total_count"`
	Page             int                        `json:"page"`
	PageSize         int                        `json:"page_size"`
	TotalPages       int                        `json:"total_pages"`
	HasNext          bool                       `json:"has_next"`
	HasPrevious      bool                       `json:"has_previous"`
	ColumnsRequested []string                   `json:"columns_requested"`
	ColumnsLoaded    []string                   `json:"columns_loaded"`
	FiltersApplied   []dao.ColumnOperatorFilter `json:"filters_applied"`
	Pagination       Pagination                 `json:"pagination"`
	Result           []map[string]any           `json:"result"`
	Timestamp        time.Time                  `json:"timestamp"`
}

// Run parses the request, executes the list query and assembles the
// response with pagination metadata and the filters actually applied.
func (c *ListCore[T]) Run(ctx context.Context, req ListRequest) (*ListResponse, error) {
	filters, err := ParseFilters(req.Filters)
	if err != nil {
		return nil, err
	}

	order := req.OrderColumn
	if order == "" {
		order = c.defaultOrder
	}

	result, err := c.dao.List(ctx, dao.ListOptions{
		ColumnOperators: filters,
		OrderColumn:     order,
		OrderDirection:  req.OrderDirection,
		Page:            req.Page,
		PageSize:        req.PageSize,
		Search:          req.Search,
		SearchColumns:   c.searchColumns,
		Columns:         req.SelectColumns,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = c.serialize(row)
	}

	pagination := Pagination{
		Page:        result.Page,
		PageSize:    result.PageSize,
		TotalPages:  result.TotalPages(),
		TotalCount:  result.TotalCount,
		HasNext:     result.HasNext(),
		HasPrevious: result.HasPrevious(),
	}
	columnsRequested := req.SelectColumns
	if columnsRequested == nil {
		columnsRequested = []string{}
	}
	columnsLoaded := result.ColumnsLoaded
	if columnsLoaded == nil {
		columnsLoaded = []string{}
	}
	return &ListResponse{
		Count:            len(rows),
		TotalCount:       result.TotalCount,
		Page:             result.Page,
		PageSize:         result.PageSize,
		TotalPages:       pagination.TotalPages,
		HasNext:          pagination.HasNext,
		HasPrevious:      pagination.HasPrevious,
		ColumnsRequested: columnsRequested,
		ColumnsLoaded:    columnsLoaded,
		FiltersApplied:   filters,
		Pagination:       pagination,
		Result:           rows,
		Timestamp:        time.Now().UTC(),
	}, nil
}

// ParseFilters normalizes the inbound filter payload. A string payload is
// parsed as a JSON list of (col, opr, value) triples; parsed payloads are
// re-shaped through JSON so both arrival forms produce identical triples.
func ParseFilters(raw any) ([]dao.ColumnOperatorFilter, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []dao.ColumnOperatorFilter:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var filters []dao.ColumnOperatorFilter
		if err := json.Unmarshal([]byte(v), &filters); err != nil {
			return nil, errors.ErrInvalidFilter.
				WithMessage(fmt.Sprintf("filters are not a valid JSON list: %v", err))
		}
		return filters, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, errors.ErrInvalidFilter.
				WithMessage(fmt.Sprintf("filters have an unsupported shape: %v", err))
		}
		var filters []dao.ColumnOperatorFilter
		if err := json.Unmarshal(encoded, &filters); err != nil {
			return nil, errors.ErrInvalidFilter.
				WithMessage(fmt.Sprintf("filters are not a list of column filters: %v", err))
		}
		return filters, nil
	}
}
