// Package dao implements the generic data access layer. A BaseDAO is bound
// to one entity type; entity-specific DAOs embed it and inherit identical
// semantics for lookup, listing, counting, filtering, creation, update and
// deletion. Lookups never raise for "not found": they return nil or an
// empty slice, and only infrastructure errors surface.
package dao

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// OpRecorder receives one observation per DAO operation, for metrics.
type OpRecorder func(entity, operation string, elapsed time.Duration, err error)

// BaseDAO provides the shared query, filter, pagination and lifecycle
// surface for one bound entity type T.
type BaseDAO[T any] struct {
	db             *gorm.DB
	log            *zap.Logger
	sch            *schema.Schema
	entityName     string
	idColumn       string
	uuidColumn     string
	slugColumn     string
	baseFilter     VisibilityFilter
	virtualColumns map[string]string
	record         OpRecorder
}

// Option configures a BaseDAO at construction time.
type Option[T any] func(*BaseDAO[T])

// WithBaseFilter sets the row-visibility filter applied to every read
// unless the caller bypasses it.
func WithBaseFilter[T any](filter VisibilityFilter) Option[T] {
	return func(d *BaseDAO[T]) { d.baseFilter = filter }
}

// WithUUIDColumn declares the entity's uuid column.
func WithUUIDColumn[T any](column string) Option[T] {
	return func(d *BaseDAO[T]) { d.uuidColumn = column }
}

// WithSlugColumn declares the entity's slug column (opt-in).
func WithSlugColumn[T any](column string) Option[T] {
	return func(d *BaseDAO[T]) { d.slugColumn = column }
}

// WithVirtualColumn declares a computed column backed by a SQL expression.
// Virtual columns are filterable and searchable with the string operator
// set and appear in schema introspection.
func WithVirtualColumn[T any](name, expr string) Option[T] {
	return func(d *BaseDAO[T]) { d.virtualColumns[name] = expr }
}

// WithOpRecorder installs a metrics hook called once per DAO operation.
func WithOpRecorder[T any](rec OpRecorder) Option[T] {
	return func(d *BaseDAO[T]) { d.record = rec }
}

// New builds a BaseDAO bound to T, parsing the entity schema once.
func New[T any](db *gorm.DB, log *zap.Logger, opts ...Option[T]) (*BaseDAO[T], error) {
	sch, err := parseSchema(new(T), db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema for %T: %w", *new(T), err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("entity %s has no primary key", sch.Name)
	}
	d := &BaseDAO[T]{
		db:             db,
		log:            log,
		sch:            sch,
		entityName:     sch.Name,
		idColumn:       sch.PrioritizedPrimaryField.DBName,
		virtualColumns: map[string]string{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// queryConfig holds per-call options.
type queryConfig struct {
	skipBaseFilter bool
	idColumn       string
}

// QueryOption adjusts a single DAO call.
type QueryOption func(*queryConfig)

// SkipBaseFilter bypasses the row-visibility filter for this call.
func SkipBaseFilter() QueryOption {
	return func(c *queryConfig) { c.skipBaseFilter = true }
}

// OnColumn overrides the identifier column for find calls.
func OnColumn(name string) QueryOption {
	return func(c *queryConfig) { c.idColumn = name }
}

func buildQueryConfig(opts []QueryOption) queryConfig {
	var cfg queryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// EntityName returns the bound entity's name, as used in error messages.
func (d *BaseDAO[T]) EntityName() string {
	return d.entityName
}

// DB exposes the underlying session for entity-specific helpers.
func (d *BaseDAO[T]) DB() *gorm.DB {
	return d.db
}

// baseQuery starts a query over the bound entity, with the visibility
// filter applied unless bypassed.
func (d *BaseDAO[T]) baseQuery(ctx context.Context, cfg queryConfig) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(new(T))
	if d.baseFilter != nil && !cfg.skipBaseFilter {
		tx = d.baseFilter.Apply(ActorFromContext(ctx), tx)
	}
	return tx
}

func (d *BaseDAO[T]) observe(operation string, start time.Time, err error) {
	if d.record != nil {
		d.record(d.entityName, operation, time.Since(start), err)
	}
}

// FindByID retrieves one entity by its primary identifier, or by an
// alternate column via OnColumn. Returns nil, nil when the value cannot be
// coerced to the column type, the column is unknown, or no row matches.
func (d *BaseDAO[T]) FindByID(ctx context.Context, id any, opts ...QueryOption) (*T, error) {
	cfg := buildQueryConfig(opts)
	column := cfg.idColumn
	if column == "" {
		column = d.idColumn
	}
	field, ok := fieldByColumn(d.sch, column)
	if !ok {
		return nil, nil
	}

	value := coerceStrict(field, field.DBName == d.uuidColumn, id)
	if isNoValue(value) {
		return nil, nil
	}

	var item T
	err := d.baseQuery(ctx, cfg).Where(field.DBName+" = ?", value).First(&item).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByUUID retrieves one entity by its uuid column.
func (d *BaseDAO[T]) FindByUUID(ctx context.Context, value string, opts ...QueryOption) (*T, error) {
	if d.uuidColumn == "" {
		return nil, nil
	}
	return d.FindByID(ctx, value, append(opts, OnColumn(d.uuidColumn))...)
}

// FindBySlug retrieves one entity by its slug column. Entities without a
// declared slug column always return nil.
func (d *BaseDAO[T]) FindBySlug(ctx context.Context, slug string, opts ...QueryOption) (*T, error) {
	if d.slugColumn == "" {
		return nil, nil
	}
	return d.FindByID(ctx, slug, append(opts, OnColumn(d.slugColumn))...)
}

// FindByIDOrUUID dispatches an identifier to the id column when it is all
// digits, otherwise to the uuid column.
func (d *BaseDAO[T]) FindByIDOrUUID(ctx context.Context, value string, opts ...QueryOption) (*T, error) {
	if isAllDigits(value) {
		return d.FindByID(ctx, value, opts...)
	}
	return d.FindByUUID(ctx, value, opts...)
}

// FindByIDs retrieves every entity whose identifier appears in ids. Inputs
// that fail coercion are passed through unchanged so the IN-list keeps the
// caller's multiplicity; they simply match nothing. A warning is emitted
// when the coerced list mixes concrete types.
func (d *BaseDAO[T]) FindByIDs(ctx context.Context, ids []any, opts ...QueryOption) ([]*T, error) {
	start := time.Now()
	if len(ids) == 0 {
		return []*T{}, nil
	}
	cfg := buildQueryConfig(opts)
	column := cfg.idColumn
	if column == "" {
		column = d.idColumn
	}
	field, ok := fieldByColumn(d.sch, column)
	if !ok {
		return []*T{}, nil
	}

	isUUID := field.DBName == d.uuidColumn
	coerced := make([]any, len(ids))
	for i, id := range ids {
		value := coerceStrict(field, isUUID, id)
		if isNoValue(value) {
			value = id
		}
		coerced[i] = value
	}
	d.warnOnMixedTypes(coerced)

	var items []*T
	err := d.baseQuery(ctx, cfg).Where(field.DBName+" IN ?", coerced).Find(&items).Error
	d.observe("find_by_ids", start, err)
	if err != nil {
		return nil, errors.ErrDAOFindFailed.
			WithMessage(fmt.Sprintf("find failed for %s with ids %v", d.entityName, ids)).
			WithError(err)
	}
	return items, nil
}

// warnOnMixedTypes logs when an id list holds more than one concrete type,
// which usually means the caller skipped its own coercion.
func (d *BaseDAO[T]) warnOnMixedTypes(values []any) {
	seen := map[reflect.Type]struct{}{}
	for _, v := range values {
		if v == nil {
			continue
		}
		seen[reflect.TypeOf(v)] = struct{}{}
	}
	if len(seen) > 1 && d.log != nil {
		types := make([]string, 0, len(seen))
		for t := range seen {
			types = append(types, t.String())
		}
		d.log.Warn("mixed id types in find_by_ids",
			zap.String("entity", d.entityName),
			zap.Strings("types", types),
		)
	}
}

// FindAll returns every visible entity.
func (d *BaseDAO[T]) FindAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	var items []*T
	err := d.baseQuery(ctx, buildQueryConfig(opts)).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindOneOrNone returns the single visible entity matching the filter map,
// nil when none matches, and an error when more than one does.
func (d *BaseDAO[T]) FindOneOrNone(ctx context.Context, filterBy map[string]any, opts ...QueryOption) (*T, error) {
	var items []*T
	err := d.baseQuery(ctx, buildQueryConfig(opts)).Where(filterBy).Limit(2).Find(&items).Error
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return items[0], nil
	default:
		return nil, errors.ErrConflict.WithMessage(
			fmt.Sprintf("multiple %s rows match %v", d.entityName, filterBy))
	}
}

// Create inserts a new entity. The caller owns the transaction boundary.
func (d *BaseDAO[T]) Create(ctx context.Context, item *T) error {
	start := time.Now()
	err := d.db.WithContext(ctx).Create(item).Error
	d.observe("create", start, err)
	return err
}

// Update persists the full state of a managed entity; a detached entity is
// merged via save semantics.
func (d *BaseDAO[T]) Update(ctx context.Context, item *T) error {
	start := time.Now()
	err := d.db.WithContext(ctx).Save(item).Error
	d.observe("update", start, err)
	return err
}

// UpdateAttributes copies the given attributes onto the entity and
// persists only those columns.
func (d *BaseDAO[T]) UpdateAttributes(ctx context.Context, item *T, attributes map[string]any) error {
	start := time.Now()
	err := d.db.WithContext(ctx).Model(item).Updates(attributes).Error
	d.observe("update", start, err)
	return err
}

// Delete removes the given entities one by one through the ORM so
// per-entity delete hooks and association cleanup fire. It never issues a
// bulk DELETE.
func (d *BaseDAO[T]) Delete(ctx context.Context, items []*T) error {
	start := time.Now()
	var err error
	for _, item := range items {
		if err = d.db.WithContext(ctx).Delete(item).Error; err != nil {
			break
		}
	}
	d.observe("delete", start, err)
	return err
}

// Query runs a caller-shaped query on top of the base-filtered entity
// query and returns all matching rows.
func (d *BaseDAO[T]) Query(ctx context.Context, shape func(tx *gorm.DB) *gorm.DB, opts ...QueryOption) ([]*T, error) {
	tx := d.baseQuery(ctx, buildQueryConfig(opts))
	if shape != nil {
		tx = shape(tx)
	}
	var items []*T
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FilterBy returns all visible entities matching the column/value map.
func (d *BaseDAO[T]) FilterBy(ctx context.Context, filterBy map[string]any, opts ...QueryOption) ([]*T, error) {
	var items []*T
	err := d.baseQuery(ctx, buildQueryConfig(opts)).Where(filterBy).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of visible rows matching the column operators.
func (d *BaseDAO[T]) Count(ctx context.Context, filters []ColumnOperatorFilter, opts ...QueryOption) (int64, error) {
	start := time.Now()
	tx := d.baseQuery(ctx, buildQueryConfig(opts))
	tx, err := d.applyColumnOperators(tx, filters)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.Count(&count).Error
	d.observe("count", start, err)
	return count, err
}

// List runs one paginated list query. Build order: projection split, base
// filter, search, custom filters, column operators, count, eager loads,
// ordering, pagination. The total is counted before eager loads attach.
func (d *BaseDAO[T]) List(ctx context.Context, opts ListOptions) (*ListResult[T], error) {
	start := time.Now()
	page := opts.Page
	if page < 0 {
		page = 0
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	scalars, preloads := d.splitProjection(opts.Columns)

	cfg := queryConfig{skipBaseFilter: opts.SkipBaseFilter}
	tx := d.baseQuery(ctx, cfg)
	tx = d.applySearch(tx, opts.Search, opts.SearchColumns)
	for _, filter := range opts.CustomFilters {
		tx = filter.Apply(tx)
	}
	tx, err := d.applyColumnOperators(tx, opts.ColumnOperators)
	if err != nil {
		d.observe("list", start, err)
		return nil, err
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		d.observe("list", start, err)
		return nil, err
	}

	// Any requested relationship forces full-entity rows so related data
	// can be eagerly loaded; otherwise a scalar projection applies.
	var loaded []string
	if len(preloads) > 0 {
		for _, rel := range preloads {
			tx = tx.Preload(rel)
		}
	} else if len(scalars) > 0 {
		tx = tx.Select(scalars)
		loaded = scalars
	}

	tx = d.applyOrdering(tx, opts.OrderColumn, opts.OrderDirection)

	limit := pageSize
	if limit < 1 {
		limit = 1
	}
	tx = tx.Offset(page * pageSize).Limit(limit)

	var rows []*T
	err = tx.Find(&rows).Error
	d.observe("list", start, err)
	if err != nil {
		return nil, err
	}
	return &ListResult[T]{
		Rows:          rows,
		TotalCount:    total,
		Page:          page,
		PageSize:      pageSize,
		ColumnsLoaded: loaded,
	}, nil
}

// FilterableColumnsAndOperators enumerates the entity's columns with the
// operators permitted for each, keyed by column name. Virtual columns get
// the string operator set. This map is the contract the tool layer's
// schema endpoint serves.
func (d *BaseDAO[T]) FilterableColumnsAndOperators() map[string][]ColumnOperator {
	out := make(map[string][]ColumnOperator, len(d.sch.Fields)+len(d.virtualColumns))
	for _, field := range d.sch.Fields {
		if field.DBName == "" {
			continue
		}
		out[field.DBName] = OperatorsForType(logicalTypeOf(field))
	}
	for name := range d.virtualColumns {
		out[name] = OperatorsForType(TypeString)
	}
	return out
}
