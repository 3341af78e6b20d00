package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Basic(t *testing.T) {
	input := "name,author,price\nDune,Frank Herbert,15\nFoundation,Isaac Asimov,12\n"

	rows, parseErrors, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	assert.Empty(t, parseErrors)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dune", rows[0]["name"])
	assert.Equal(t, "Frank Herbert", rows[0]["author"])
	assert.Equal(t, "15", rows[0]["price"])
	assert.Equal(t, "Foundation", rows[1]["name"])
}

func TestParseCSV_NormalizesHeaders(t *testing.T) {
	input := " Name , AUTHOR \nDune,Frank Herbert\n"

	rows, _, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["name"])
	assert.Equal(t, "Frank Herbert", rows[0]["author"])
}

func TestParseCSV_TrimsValues(t *testing.T) {
	input := "name,author\n  Dune  , Frank Herbert \n"

	rows, _, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, "Dune", rows[0]["name"])
	assert.Equal(t, "Frank Herbert", rows[0]["author"])
}

func TestParseCSV_ShortRowLeavesColumnsUnset(t *testing.T) {
	input := "name,author,price\nDune\n"

	rows, parseErrors, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	assert.Empty(t, parseErrors)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["name"])
	_, ok := rows[0]["author"]
	assert.False(t, ok)
}

func TestParseCSV_MalformedLineCollectedNotFatal(t *testing.T) {
	input := "name,author\nDune,Frank Herbert\n\"broken,row\nFoundation,Isaac Asimov\n"

	rows, parseErrors, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.NotEmpty(t, parseErrors)
	assert.Contains(t, parseErrors[0], "Line")
	require.NotEmpty(t, rows)
	assert.Equal(t, "Dune", rows[0]["name"])
}

func TestParseCSV_EmptyInputFailsOnHeader(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader(""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseCSV_BlankHeaderColumnSkipped(t *testing.T) {
	input := "name,,author\nDune,ignored,Frank Herbert\n"

	rows, _, err := ParseCSV(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["name"])
	assert.Equal(t, "Frank Herbert", rows[0]["author"])
	assert.Len(t, rows[0], 2)
}
