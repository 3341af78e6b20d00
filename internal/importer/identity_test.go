package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByUniqueColumn(t *testing.T) {
	strategy := ByUniqueColumn("id")

	key, err := strategy.Key(RawRow{"id": " 42 "})
	require.NoError(t, err)
	assert.Equal(t, "42", key)
}

func TestByUniqueColumn_MissingValue(t *testing.T) {
	strategy := ByUniqueColumn("id")

	_, err := strategy.Key(RawRow{"name": "Dune"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "id", validationErr.Field)
}

func TestByHashedColumn(t *testing.T) {
	strategy := ByHashedColumn("name")

	key, err := strategy.Key(RawRow{"name": "Dune"})
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("Dune"))
	assert.Equal(t, hex.EncodeToString(sum[:]), key)

	// Deterministic across calls.
	again, err := strategy.Key(RawRow{"name": "Dune"})
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestByHashedColumn_MissingValue(t *testing.T) {
	strategy := ByHashedColumn("name")

	_, err := strategy.Key(RawRow{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
