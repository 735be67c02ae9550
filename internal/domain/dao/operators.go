package dao

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// ColumnOperator is one of the closed set of comparison operators that can
// be applied to a column in list and count filters.
type ColumnOperator string

const (
	OpEq        ColumnOperator = "eq"
	OpNe        ColumnOperator = "ne"
	OpSw        ColumnOperator = "sw"
	OpEw        ColumnOperator = "ew"
	OpIn        ColumnOperator = "in"
	OpNin       ColumnOperator = "nin"
	OpGt        ColumnOperator = "gt"
	OpGte       ColumnOperator = "gte"
	OpLt        ColumnOperator = "lt"
	OpLte       ColumnOperator = "lte"
	OpLike      ColumnOperator = "like"
	OpILike     ColumnOperator = "ilike"
	OpIsNull    ColumnOperator = "is_null"
	OpIsNotNull ColumnOperator = "is_not_null"
)

// LogicalType is the coarse column classification that decides which
// operators are valid for a column.
type LogicalType string

const (
	TypeString   LogicalType = "string"
	TypeBoolean  LogicalType = "boolean"
	TypeNumber   LogicalType = "number"
	TypeDateTime LogicalType = "datetime"
	TypeOther    LogicalType = "other"
)

var allOperators = map[ColumnOperator]struct{}{
	OpEq: {}, OpNe: {}, OpSw: {}, OpEw: {}, OpIn: {}, OpNin: {},
	OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {}, OpLike: {}, OpILike: {},
	OpIsNull: {}, OpIsNotNull: {},
}

var operatorsByType = map[LogicalType][]ColumnOperator{
	TypeString: {
		OpEq, OpNe, OpSw, OpEw, OpIn, OpNin, OpLike, OpILike,
		OpIsNull, OpIsNotNull,
	},
	TypeBoolean: {OpEq, OpNe, OpIsNull, OpIsNotNull},
	TypeNumber: {
		OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin,
		OpIsNull, OpIsNotNull,
	},
	TypeDateTime: {
		OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpNin,
		OpIsNull, OpIsNotNull,
	},
	TypeOther: {OpEq, OpNe, OpIsNull, OpIsNotNull},
}

// Valid reports whether the operator belongs to the enumeration.
func (op ColumnOperator) Valid() bool {
	_, ok := allOperators[op]
	return ok
}

// OperatorsForType returns the operator whitelist for a logical type.
// The returned slice is a copy.
func OperatorsForType(t LogicalType) []ColumnOperator {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = operatorsByType[TypeOther]
	}
	out := make([]ColumnOperator, len(ops))
	copy(out, ops)
	return out
}

// SupportedBy reports whether the operator is permitted for columns of the
// given logical type.
func (op ColumnOperator) SupportedBy(t LogicalType) bool {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = operatorsByType[TypeOther]
	}
	for _, candidate := range ops {
		if candidate == op {
			return true
		}
	}
	return false
}

// applyOperator attaches the predicate for (column, op, value) to the query.
// The column expression must already be validated against the entity schema.
func applyOperator(tx *gorm.DB, column string, op ColumnOperator, value any) (*gorm.DB, error) {
	switch op {
	case OpEq:
		return tx.Where(column+" = ?", value), nil
	case OpNe:
		return tx.Where(column+" <> ?", value), nil
	case OpSw:
		return tx.Where(column+" LIKE ?", fmt.Sprintf("%v%%", value)), nil
	case OpEw:
		return tx.Where(column+" LIKE ?", fmt.Sprintf("%%%v", value)), nil
	case OpIn:
		return tx.Where(column+" IN ?", scalarize(value)), nil
	case OpNin:
		return tx.Where(column+" NOT IN ?", scalarize(value)), nil
	case OpGt:
		return tx.Where(column+" > ?", value), nil
	case OpGte:
		return tx.Where(column+" >= ?", value), nil
	case OpLt:
		return tx.Where(column+" < ?", value), nil
	case OpLte:
		return tx.Where(column+" <= ?", value), nil
	case OpLike:
		return tx.Where(column+" LIKE ?", fmt.Sprintf("%%%v%%", value)), nil
	case OpILike:
		return tx.Where("LOWER("+column+") LIKE LOWER(?)", fmt.Sprintf("%%%v%%", value)), nil
	case OpIsNull:
		return tx.Where(column + " IS NULL"), nil
	case OpIsNotNull:
		return tx.Where(column + " IS NOT NULL"), nil
	default:
		return nil, errors.ErrUnsupportedOperator.WithMessage(
			fmt.Sprintf("Unsupported operator: %s", op))
	}
}

// scalarize wraps a single value into a one-element list so in/nin accept
// both scalars and lists.
func scalarize(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if _, isBytes := value.([]byte); !isBytes {
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = rv.Index(i).Interface()
			}
			return out
		}
	}
	return []any{value}
}
