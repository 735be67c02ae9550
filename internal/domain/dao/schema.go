package dao

import (
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

var schemaCache = &sync.Map{}

// parseSchema parses the gorm schema of the bound entity once and caches it.
func parseSchema(model any, namer schema.Namer) (*schema.Schema, error) {
	return schema.Parse(model, schemaCache, namer)
}

// logicalTypeOf classifies a column by the coarse types the operator
// catalog understands. Text blobs count as strings; anything the
// classification cannot place falls back to "other".
func logicalTypeOf(field *schema.Field) LogicalType {
	switch field.DataType {
	case schema.Bool:
		return TypeBoolean
	case schema.Int, schema.Uint, schema.Float:
		return TypeNumber
	case schema.Time:
		return TypeDateTime
	case schema.String:
		return TypeString
	}

	// Custom column types ("text", "varchar(36)", ...) keep the Go kind.
	t := field.FieldType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.String:
		return TypeString
	}
	if t == reflect.TypeOf(time.Time{}) {
		return TypeDateTime
	}
	return TypeOther
}

// fieldByColumn resolves a caller-supplied column name against the schema,
// accepting either the database column name or the Go field name.
func fieldByColumn(sch *schema.Schema, name string) (*schema.Field, bool) {
	if field, ok := sch.FieldsByDBName[name]; ok {
		return field, true
	}
	if field, ok := sch.FieldsByName[name]; ok && field.DBName != "" {
		return field, true
	}
	return nil, false
}

// relationshipByName resolves a caller-supplied projection name to a
// relationship, accepting the Go field name.
func relationshipByName(sch *schema.Schema, name string) (string, bool) {
	if rel, ok := sch.Relationships.Relations[name]; ok {
		return rel.Name, true
	}
	return "", false
}
