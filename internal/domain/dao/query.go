package dao

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// ColumnOperatorFilter is one (column, operator, value) filter triple.
// This is the wire shape list filters arrive in.
type ColumnOperatorFilter struct {
	Col   string         `json:"col"`
	Opr   ColumnOperator `json:"opr"`
	Value any            `json:"value"`
}

// CustomFilter is an opaque caller-supplied filter applied to the query as
// given. The DAO does not inspect it.
type CustomFilter interface {
	Apply(tx *gorm.DB) *gorm.DB
}

// CustomFilterFunc adapts a plain function to a CustomFilter.
type CustomFilterFunc func(tx *gorm.DB) *gorm.DB

// Apply implements CustomFilter.
func (f CustomFilterFunc) Apply(tx *gorm.DB) *gorm.DB {
	return f(tx)
}

// ListOptions describes one list query: filtering, free-text search,
// ordering, pagination and projection. Zero values fall back to the
// defaults (changed_on desc, page 0, page size 100).
type ListOptions struct {
	ColumnOperators []ColumnOperatorFilter
	OrderColumn     string
	OrderDirection  string
	Page            int
	PageSize        int
	Search          string
	SearchColumns   []string
	CustomFilters   []CustomFilter
	Columns         []string
	SkipBaseFilter  bool
}

const (
	defaultOrderColumn    = "changed_on"
	defaultOrderDirection = "desc"
	defaultPageSize       = 100
)

// ListResult is one page of rows plus the total count of visible rows.
// The total is computed before relationship eager-loads are attached so
// one-to-many joins cannot inflate it.
type ListResult[T any] struct {
	Rows       []*T
	TotalCount int64
	Page       int
	PageSize   int
	// ColumnsLoaded names the scalar columns selected when a projection
	// was applied; empty means full entities were loaded.
	ColumnsLoaded []string
}

// TotalPages returns ceil(TotalCount / PageSize), or 0 for a non-positive
// page size.
func (r *ListResult[T]) TotalPages() int {
	if r.PageSize <= 0 {
		return 0
	}
	pages := int(r.TotalCount) / r.PageSize
	if int(r.TotalCount)%r.PageSize > 0 {
		pages++
	}
	return pages
}

// HasNext reports whether a page exists after the current one.
// Pages are 0-based.
func (r *ListResult[T]) HasNext() bool {
	return r.Page < r.TotalPages()-1
}

// HasPrevious reports whether a page exists before the current one.
func (r *ListResult[T]) HasPrevious() bool {
	return r.Page > 0
}

// splitProjection partitions requested projection names into scalar column
// names and relationship eager-loads. Unknown names are dropped.
func (d *BaseDAO[T]) splitProjection(columns []string) (scalars, preloads []string) {
	for _, name := range columns {
		if rel, ok := relationshipByName(d.sch, name); ok {
			preloads = append(preloads, rel)
			continue
		}
		if field, ok := fieldByColumn(d.sch, name); ok {
			scalars = append(scalars, field.DBName)
		}
	}
	return scalars, preloads
}

// applyColumnOperators validates and attaches each (col, opr, value)
// triple. An operator outside the enumeration or a column missing from the
// entity fails the build.
func (d *BaseDAO[T]) applyColumnOperators(tx *gorm.DB, filters []ColumnOperatorFilter) (*gorm.DB, error) {
	for _, f := range filters {
		if !f.Opr.Valid() {
			return nil, errors.ErrUnsupportedOperator.WithMessage(
				fmt.Sprintf("Unsupported operator: %s", f.Opr))
		}

		var (
			column      string
			logicalType LogicalType
			value       = f.Value
		)
		if expr, ok := d.virtualColumns[f.Col]; ok {
			column = expr
			logicalType = TypeString
		} else {
			field, ok := fieldByColumn(d.sch, f.Col)
			if !ok {
				return nil, errors.ErrInvalidFilter.WithMessage(fmt.Sprintf(
					"Invalid filter: column %s does not exist on %s", f.Col, d.entityName))
			}
			column = field.DBName
			logicalType = logicalTypeOf(field)
			value = coerceLoose(field, f.Value)
		}

		if !f.Opr.SupportedBy(logicalType) {
			return nil, errors.ErrInvalidFilter.WithMessage(fmt.Sprintf(
				"Invalid filter: operator %s is not valid for %s column %s on %s",
				f.Opr, logicalType, f.Col, d.entityName))
		}

		var err error
		tx, err = applyOperator(tx, column, f.Opr, value)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// applySearch attaches a free-text OR search over the declared search
// columns. Columns not present on the entity are skipped.
func (d *BaseDAO[T]) applySearch(tx *gorm.DB, search string, searchColumns []string) *gorm.DB {
	if search == "" || len(searchColumns) == 0 {
		return tx
	}
	var (
		conds []string
		args  []any
	)
	pattern := "%" + search + "%"
	for _, name := range searchColumns {
		expr, ok := d.virtualColumns[name]
		if !ok {
			field, found := fieldByColumn(d.sch, name)
			if !found {
				continue
			}
			expr = castToText(tx, field.DBName)
		}
		conds = append(conds, "LOWER("+expr+") LIKE LOWER(?)")
		args = append(args, pattern)
	}
	if len(conds) == 0 {
		return tx
	}
	return tx.Where(strings.Join(conds, " OR "), args...)
}

// applyOrdering orders by a single column. An order column missing from
// the entity is ignored rather than erroring.
func (d *BaseDAO[T]) applyOrdering(tx *gorm.DB, column, direction string) *gorm.DB {
	if column == "" {
		column = defaultOrderColumn
	}
	direction = strings.ToLower(direction)
	if direction != "asc" && direction != "desc" {
		direction = defaultOrderDirection
	}

	expr, ok := d.virtualColumns[column]
	if !ok {
		field, found := fieldByColumn(d.sch, column)
		if !found {
			return tx
		}
		expr = field.DBName
	}
	return tx.Order(expr + " " + direction)
}

// castToText renders a dialect-appropriate cast so non-string columns can
// participate in text search.
func castToText(tx *gorm.DB, column string) string {
	if tx.Dialector != nil && tx.Dialector.Name() == "mysql" {
		return "CAST(" + column + " AS CHAR)"
	}
	return "CAST(" + column + " AS TEXT)"
}
