package ingest

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	floeerrors "github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader() *Loader {
	return NewLoader(zerolog.Nop())
}

func TestSplitRows(t *testing.T) {
	rows := SplitRows("{\"id\": 1}\n\n   \n{\"id\": 2}\n{\"id\": 3}\n")

	require.Len(t, rows, 3)
	assert.Equal(t, `{"id": 1}`, rows[0])
	assert.Equal(t, `{"id": 2}`, rows[1])
	assert.Equal(t, `{"id": 3}`, rows[2])
}

func TestSplitRowsEmpty(t *testing.T) {
	assert.Empty(t, SplitRows(""))
	assert.Empty(t, SplitRows("\n  \n\t\n"))
}

func TestLoadRowsExplicitSchema(t *testing.T) {
	rec, err := testLoader().LoadRows("id int, dep string",
		"{\"id\": 1, \"dep\": \"hr\"}\n{\"id\": 2, \"dep\": \"hardware\"}\n{\"id\": 3, \"dep\": null}")
	require.NoError(t, err)
	defer rec.Release()

	require.EqualValues(t, 3, rec.NumRows())
	require.EqualValues(t, 2, rec.NumCols())

	ids := rec.Column(0).(*array.Int32)
	assert.EqualValues(t, 1, ids.Value(0))
	assert.EqualValues(t, 2, ids.Value(1))
	assert.EqualValues(t, 3, ids.Value(2))

	deps := rec.Column(1).(*array.String)
	assert.Equal(t, "hr", deps.Value(0))
	assert.Equal(t, "hardware", deps.Value(1))
	assert.True(t, deps.IsNull(2))
}

func TestLoadRowsPreservesOrder(t *testing.T) {
	rec, err := testLoader().LoadRows("id int",
		"{\"id\": 5}\n\n{\"id\": 3}\n\n\n{\"id\": 9}")
	require.NoError(t, err)
	defer rec.Release()

	ids := rec.Column(0).(*array.Int32)
	require.EqualValues(t, 3, rec.NumRows())
	assert.EqualValues(t, 5, ids.Value(0))
	assert.EqualValues(t, 3, ids.Value(1))
	assert.EqualValues(t, 9, ids.Value(2))
}

func TestLoadRowsEmptyPayload(t *testing.T) {
	rec, err := testLoader().LoadRows("id int, dep string", "")
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 0, rec.NumRows())
	assert.EqualValues(t, 2, rec.NumCols())
}

func TestLoadRowsInvalidPayload(t *testing.T) {
	_, err := testLoader().LoadRows("id int", "{\"id\": \"not an int\"}")
	require.Error(t, err)
	assert.Equal(t, ErrRowParseFailed.String(), floeerrors.GetCode(err))
}

func TestLoadRowsInferredSchema(t *testing.T) {
	rec, err := testLoader().LoadRows("",
		"{\"id\": 1, \"score\": 9.5, \"name\": \"a\", \"active\": true}\n{\"id\": 2, \"score\": 8, \"name\": \"b\", \"active\": false}")
	require.NoError(t, err)
	defer rec.Release()

	schema := rec.Schema()
	require.Len(t, schema.Fields(), 4)
	assert.Equal(t, "id", schema.Field(0).Name)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	assert.Equal(t, "score", schema.Field(1).Name)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(1).Type)
	assert.Equal(t, "name", schema.Field(2).Name)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(2).Type)
	assert.Equal(t, "active", schema.Field(3).Name)
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, schema.Field(3).Type)

	assert.EqualValues(t, 2, rec.NumRows())
}

func TestInferSchemaNullOnlyField(t *testing.T) {
	schema, err := InferSchema([]string{`{"ghost": null}`, `{"ghost": null}`})
	require.NoError(t, err)

	require.Len(t, schema.Fields(), 1)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(0).Type)
}

func TestInferSchemaWidening(t *testing.T) {
	schema, err := InferSchema([]string{`{"v": 1}`, `{"v": 2.5}`})
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(0).Type)

	schema, err = InferSchema([]string{`{"v": 1}`, `{"v": "mixed"}`})
	require.NoError(t, err)
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(0).Type)
}

func TestInferSchemaRejectsNestedValues(t *testing.T) {
	_, err := InferSchema([]string{`{"v": {"nested": 1}}`})
	require.Error(t, err)
	assert.Equal(t, ErrUnknownType.String(), floeerrors.GetCode(err))
}

func TestInferSchemaRejectsMalformedRows(t *testing.T) {
	_, err := InferSchema([]string{`{"v": 1`})
	require.Error(t, err)

	_, err = InferSchema([]string{`[1, 2, 3]`})
	require.Error(t, err)
}

func TestLoadTableSingleChunk(t *testing.T) {
	tbl, err := testLoader().LoadTable("id int", "{\"id\": 1}\n{\"id\": 2}")
	require.NoError(t, err)
	defer tbl.Release()

	assert.EqualValues(t, 2, tbl.NumRows())
	require.EqualValues(t, 1, tbl.NumCols())
	assert.Len(t, tbl.Column(0).Data().Chunks(), 1)
}
