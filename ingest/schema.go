package ingest

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/gear6io/floe/pkg/errors"
)

// typeMapping pairs the Iceberg type of a column with the Arrow type rows are
// parsed into.
type typeMapping struct {
	iceberg iceberg.Type
	arrow   arrow.DataType
}

// typeMappings accepts Iceberg type names plus the common SQL aliases for
// them. Keys are matched lowercase.
var typeMappings = map[string]typeMapping{
	"boolean": {iceberg.PrimitiveTypes.Bool, arrow.FixedWidthTypes.Boolean},
	"bool":    {iceberg.PrimitiveTypes.Bool, arrow.FixedWidthTypes.Boolean},

	"int32":    {iceberg.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int32},
	"int":      {iceberg.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int32},
	"integer":  {iceberg.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int32},
	"smallint": {iceberg.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int32},
	"tinyint":  {iceberg.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int32},

	"int64":  {iceberg.PrimitiveTypes.Int64, arrow.PrimitiveTypes.Int64},
	"long":   {iceberg.PrimitiveTypes.Int64, arrow.PrimitiveTypes.Int64},
	"bigint": {iceberg.PrimitiveTypes.Int64, arrow.PrimitiveTypes.Int64},

	"float32": {iceberg.PrimitiveTypes.Float32, arrow.PrimitiveTypes.Float32},
	"float":   {iceberg.PrimitiveTypes.Float32, arrow.PrimitiveTypes.Float32},
	"real":    {iceberg.PrimitiveTypes.Float32, arrow.PrimitiveTypes.Float32},

	"float64": {iceberg.PrimitiveTypes.Float64, arrow.PrimitiveTypes.Float64},
	"double":  {iceberg.PrimitiveTypes.Float64, arrow.PrimitiveTypes.Float64},

	"string":  {iceberg.PrimitiveTypes.String, arrow.BinaryTypes.String},
	"varchar": {iceberg.PrimitiveTypes.String, arrow.BinaryTypes.String},
	"char":    {iceberg.PrimitiveTypes.String, arrow.BinaryTypes.String},
	"text":    {iceberg.PrimitiveTypes.String, arrow.BinaryTypes.String},

	"binary":    {iceberg.PrimitiveTypes.Binary, arrow.BinaryTypes.Binary},
	"blob":      {iceberg.PrimitiveTypes.Binary, arrow.BinaryTypes.Binary},
	"varbinary": {iceberg.PrimitiveTypes.Binary, arrow.BinaryTypes.Binary},

	"date": {iceberg.PrimitiveTypes.Date, arrow.FixedWidthTypes.Date32},
	"time": {iceberg.PrimitiveTypes.Time, arrow.FixedWidthTypes.Time64us},

	"timestamp":   {iceberg.PrimitiveTypes.Timestamp, &arrow.TimestampType{Unit: arrow.Microsecond}},
	"datetime":    {iceberg.PrimitiveTypes.Timestamp, &arrow.TimestampType{Unit: arrow.Microsecond}},
	"timestamptz": {iceberg.PrimitiveTypes.TimestampTz, arrow.FixedWidthTypes.Timestamp_us},
}

// ParseSchema parses a column list of the form "id int, dep string" into
// matching Iceberg and Arrow schemas. A column may carry a trailing NOT NULL.
// Field IDs are assigned in declaration order starting at 1.
func ParseSchema(schemaText string) (*iceberg.Schema, *arrow.Schema, error) {
	if strings.TrimSpace(schemaText) == "" {
		return nil, nil, errors.New(ErrSchemaParseFailed, "schema text is empty", nil)
	}

	parts := strings.Split(schemaText, ",")
	icebergFields := make([]iceberg.NestedField, 0, len(parts))
	arrowFields := make([]arrow.Field, 0, len(parts))

	for i, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) < 2 {
			return nil, nil, errors.Newf(ErrSchemaParseFailed, "column %d: expected 'name type', got %q", i+1, strings.TrimSpace(part))
		}

		name := tokens[0]
		typeName := strings.ToLower(tokens[1])
		required := false

		if len(tokens) > 2 {
			rest := strings.ToUpper(strings.Join(tokens[2:], " "))
			switch rest {
			case "NOT NULL":
				required = true
			case "NULL":
			default:
				return nil, nil, errors.Newf(ErrSchemaParseFailed, "column %q: unexpected trailing tokens %q", name, strings.Join(tokens[2:], " "))
			}
		}

		mapping, ok := typeMappings[typeName]
		if !ok {
			return nil, nil, errors.Newf(ErrUnknownType, "column %q: unknown type %q", name, tokens[1]).
				AddContext("column", name).
				AddContext("type", tokens[1])
		}

		icebergFields = append(icebergFields, iceberg.NestedField{
			ID:       i + 1,
			Name:     name,
			Type:     mapping.iceberg,
			Required: required,
		})
		arrowFields = append(arrowFields, arrow.Field{
			Name:     name,
			Type:     mapping.arrow,
			Nullable: !required,
		})
	}

	return iceberg.NewSchema(0, icebergFields...), arrow.NewSchema(arrowFields, nil), nil
}
