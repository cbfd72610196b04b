package ingest

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Loader turns newline-delimited JSON payloads into Arrow records.
type Loader struct {
	mem    memory.Allocator
	logger zerolog.Logger
}

// NewLoader creates a new loader
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		mem:    memory.DefaultAllocator,
		logger: logger,
	}
}

// SplitRows splits a newline-delimited JSON payload into rows. Blank and
// whitespace-only lines are dropped; row order is preserved.
func SplitRows(jsonData string) []string {
	var rows []string
	for _, line := range strings.Split(jsonData, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rows = append(rows, trimmed)
	}
	return rows
}

// LoadRows parses a newline-delimited JSON payload into a single Arrow
// record. When schemaText is non-empty it names the column layout; otherwise
// the schema is inferred from the rows. An empty payload yields an empty
// record. The caller releases the record.
func (l *Loader) LoadRows(schemaText, jsonData string) (arrow.Record, error) {
	rows := SplitRows(jsonData)

	var (
		schema *arrow.Schema
		err    error
	)
	if strings.TrimSpace(schemaText) != "" {
		_, schema, err = ParseSchema(schemaText)
	} else {
		schema, err = InferSchema(rows)
	}
	if err != nil {
		return nil, err
	}

	payload := "[" + strings.Join(rows, ",") + "]"
	rec, err := array.RecordFromJSON(l.mem, schema, strings.NewReader(payload))
	if err != nil {
		return nil, errors.New(ErrRowParseFailed, "failed to parse rows against schema", err).
			AddContext("rows", payload)
	}

	l.logger.Debug().Int64("rows", rec.NumRows()).Int("columns", len(schema.Fields())).Msg("loaded rows")
	return rec, nil
}

// LoadTable parses rows like LoadRows and wraps them in a single-chunk Arrow
// table, the unit appended to Iceberg tables in one commit.
func (l *Loader) LoadTable(schemaText, jsonData string) (arrow.Table, error) {
	rec, err := l.LoadRows(schemaText, jsonData)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	return array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec}), nil
}

type inferredKind int

const (
	inferUnknown inferredKind = iota
	inferBool
	inferInt
	inferFloat
	inferString
)

// InferSchema derives an Arrow schema from JSON rows. Fields keep first-seen
// order. Booleans map to bool, integral numbers to int64, fractional numbers
// to float64, strings to string; a field never seen non-null defaults to
// string. Mixed int and float widens to float64, any other mix widens to
// string.
func InferSchema(rows []string) (*arrow.Schema, error) {
	var order []string
	kinds := make(map[string]inferredKind)

	for i, row := range rows {
		if !gjson.Valid(row) {
			return nil, errors.Newf(ErrRowParseFailed, "row %d is not valid JSON: %s", i+1, row)
		}

		parsed := gjson.Parse(row)
		if !parsed.IsObject() {
			return nil, errors.Newf(ErrRowParseFailed, "row %d is not a JSON object: %s", i+1, row)
		}

		var inferErr error
		parsed.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			kind, err := kindOf(value)
			if err != nil {
				inferErr = errors.AsError(err).AddContext("field", name)
				return false
			}

			if _, seen := kinds[name]; !seen {
				order = append(order, name)
			}
			kinds[name] = widen(kinds[name], kind)
			return true
		})
		if inferErr != nil {
			return nil, inferErr
		}
	}

	fields := make([]arrow.Field, 0, len(order))
	for _, name := range order {
		fields = append(fields, arrow.Field{
			Name:     name,
			Type:     arrowTypeFor(kinds[name]),
			Nullable: true,
		})
	}

	return arrow.NewSchema(fields, nil), nil
}

func kindOf(value gjson.Result) (inferredKind, error) {
	switch value.Type {
	case gjson.True, gjson.False:
		return inferBool, nil
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return inferFloat, nil
		}
		return inferInt, nil
	case gjson.String:
		return inferString, nil
	case gjson.Null:
		return inferUnknown, nil
	default:
		return inferUnknown, errors.Newf(ErrUnknownType, "cannot infer a flat type from nested value %s", value.Raw)
	}
}

func widen(a, b inferredKind) inferredKind {
	switch {
	case a == inferUnknown:
		return b
	case b == inferUnknown:
		return a
	case a == b:
		return a
	case (a == inferInt && b == inferFloat) || (a == inferFloat && b == inferInt):
		return inferFloat
	default:
		return inferString
	}
}

func arrowTypeFor(kind inferredKind) arrow.DataType {
	switch kind {
	case inferBool:
		return arrow.FixedWidthTypes.Boolean
	case inferInt:
		return arrow.PrimitiveTypes.Int64
	case inferFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}
