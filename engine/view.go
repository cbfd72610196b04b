package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/gear6io/floe/pkg/errors"
)

// RegisterViewRecord installs an Arrow record as a replaceable temporary
// view. The view is built from a typed VALUES list so column types survive
// even when every value in a column is NULL; an empty record yields a
// zero-row view with the record's column layout.
func (e *Engine) RegisterViewRecord(ctx context.Context, name string, rec arrow.Record) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(ErrInvalidIdentifier, "view name is empty", nil)
	}
	if rec == nil {
		return errors.New(ErrViewCreateFailed, "record is nil", nil).AddContext("view", name)
	}

	viewSQL, err := buildViewSQL(name, rec)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.db.ExecContext(ctx, viewSQL); err != nil {
		e.metrics.Failures++
		return errors.New(ErrViewCreateFailed, "failed to create view", err).
			AddContext("view", name)
	}
	e.metrics.ViewsRegistered++

	e.logger.Debug().Str("view", name).Int64("rows", rec.NumRows()).Msg("view registered")
	return nil
}

func buildViewSQL(name string, rec arrow.Record) (string, error) {
	schema := rec.Schema()
	numCols := int(rec.NumCols())
	numRows := int(rec.NumRows())

	var b strings.Builder
	b.WriteString("CREATE OR REPLACE TEMPORARY VIEW ")
	b.WriteString(quoteName(name))
	b.WriteString(" AS ")

	if numRows == 0 {
		// SELECT CAST(NULL AS T) AS col ... WHERE FALSE keeps the column
		// layout without producing rows.
		b.WriteString("SELECT ")
		for i := 0; i < numCols; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			sqlType, err := duckdbType(schema.Field(i).Type)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "CAST(NULL AS %s) AS %s", sqlType, quoteName(schema.Field(i).Name))
		}
		b.WriteString(" WHERE FALSE")
		return b.String(), nil
	}

	b.WriteString("SELECT * FROM (VALUES ")
	for row := 0; row < numRows; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for col := 0; col < numCols; col++ {
			if col > 0 {
				b.WriteString(", ")
			}

			lit, err := renderValue(rec.Column(col), row)
			if err != nil {
				return "", errors.AsError(err).AddContext("column", schema.Field(col).Name)
			}

			// Casting the first row pins every column's type for the rows
			// after it.
			if row == 0 {
				sqlType, err := duckdbType(schema.Field(col).Type)
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, "CAST(%s AS %s)", lit, sqlType)
			} else {
				b.WriteString(lit)
			}
		}
		b.WriteString(")")
	}
	b.WriteString(") AS t(")
	for i := 0; i < numCols; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteName(schema.Field(i).Name))
	}
	b.WriteString(")")

	return b.String(), nil
}

// duckdbType maps an Arrow column type to the DuckDB type used in view casts
func duckdbType(dt arrow.DataType) (string, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return "BOOLEAN", nil
	case arrow.INT32:
		return "INTEGER", nil
	case arrow.INT64:
		return "BIGINT", nil
	case arrow.FLOAT32:
		return "FLOAT", nil
	case arrow.FLOAT64:
		return "DOUBLE", nil
	case arrow.STRING, arrow.LARGE_STRING:
		return "VARCHAR", nil
	case arrow.BINARY:
		return "BLOB", nil
	case arrow.DATE32:
		return "DATE", nil
	case arrow.TIME64:
		return "TIME", nil
	case arrow.TIMESTAMP:
		return "TIMESTAMP", nil
	default:
		return "", errors.Newf(ErrUnsupportedColumnType, "no SQL type for arrow type %s", dt.Name())
	}
}

func renderValue(col arrow.Array, row int) (string, error) {
	if col.IsNull(row) {
		return "NULL", nil
	}

	switch c := col.(type) {
	case *array.Boolean:
		return strconv.FormatBool(c.Value(row)), nil
	case *array.Int32:
		return strconv.FormatInt(int64(c.Value(row)), 10), nil
	case *array.Int64:
		return strconv.FormatInt(c.Value(row), 10), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(c.Value(row)), 'g', -1, 32), nil
	case *array.Float64:
		return strconv.FormatFloat(c.Value(row), 'g', -1, 64), nil
	case *array.String:
		return quoteString(c.Value(row)), nil
	case *array.LargeString:
		return quoteString(c.Value(row)), nil
	case *array.Binary:
		var hex strings.Builder
		hex.WriteString("'")
		for _, by := range c.Value(row) {
			fmt.Fprintf(&hex, `\x%02X`, by)
		}
		hex.WriteString("'::BLOB")
		return hex.String(), nil
	case *array.Date32:
		return "DATE " + quoteString(c.Value(row).ToTime().Format("2006-01-02")), nil
	case *array.Time64:
		unit := c.DataType().(*arrow.Time64Type).Unit
		return "TIME " + quoteString(c.Value(row).ToTime(unit).Format("15:04:05.999999")), nil
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return "TIMESTAMP " + quoteString(c.Value(row).ToTime(unit).Format("2006-01-02 15:04:05.999999")), nil
	default:
		return "", errors.Newf(ErrUnsupportedColumnType, "no SQL literal for arrow array %T", col)
	}
}

// quoteString renders a SQL string literal, doubling embedded quotes
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
