package toolcore

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
)

// LookupDAO is the single-record lookup surface GetInfoCore drives.
type LookupDAO[T any] interface {
	FindByID(ctx context.Context, id any, opts ...dao.QueryOption) (*T, error)
	FindByUUID(ctx context.Context, value string, opts ...dao.QueryOption) (*T, error)
	FindBySlug(ctx context.Context, slug string, opts ...dao.QueryOption) (*T, error)
}

// CompositeResolver is an optional fallthrough for entities with a
// combined id/slug resolution rule beyond the standard dispatch.
type CompositeResolver[T any] func(ctx context.Context, ref string) (*T, error)

// GetInfoCore resolves one identifier to one serialized record.
type GetInfoCore[T any] struct {
	dao        LookupDAO[T]
	serialize  RowSerializer[T]
	entityName string
	allowSlug  bool
	composite  CompositeResolver[T]
}

// NewGetInfoCore wires a lookup core. allowSlug opts the entity into slug
// resolution; composite may be nil.
func NewGetInfoCore[T any](d LookupDAO[T], serialize RowSerializer[T], entityName string, allowSlug bool, composite CompositeResolver[T]) *GetInfoCore[T] {
	return &GetInfoCore[T]{
		dao:        d,
		serialize:  serialize,
		entityName: entityName,
		allowSlug:  allowSlug,
		composite:  composite,
	}
}

// NotFound is the typed miss record a failed lookup returns in place of
// an error.
type NotFound struct {
	Entity string `json:"entity"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// Run dispatches the identifier: integer strings hit the id column, then
// uuid strings the uuid column, then slugs when the entity supports them.
// A miss yields a NotFound record, not an error; errors are reserved for
// infrastructure failures.
func (c *GetInfoCore[T]) Run(ctx context.Context, ref string) (map[string]any, *NotFound, error) {
	row, err := c.resolve(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if row == nil {
		return nil, &NotFound{
			Entity: c.entityName,
			Ref:    ref,
			Reason: "not_found",
		}, nil
	}
	return c.serialize(row), nil, nil
}

func (c *GetInfoCore[T]) resolve(ctx context.Context, ref string) (*T, error) {
	if _, err := strconv.Atoi(ref); err == nil {
		return c.dao.FindByID(ctx, ref)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return c.dao.FindByUUID(ctx, ref)
	}
	if c.allowSlug {
		row, err := c.dao.FindBySlug(ctx, ref)
		if err != nil || row != nil {
			return row, err
		}
		if c.composite != nil {
			return c.composite(ctx, ref)
		}
	}
	return nil, nil
}
