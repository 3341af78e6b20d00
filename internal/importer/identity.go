package importer

import (
	"crypto/sha256"
	"encoding/hex"
)

// IdentityStrategy derives the key used to match a row to an existing
// record. Keys must be deterministic given the row.
type IdentityStrategy interface {
	Key(row RawRow) (string, error)
}

type uniqueColumn struct {
	column string
}

// ByUniqueColumn uses the raw value of an explicitly unique column as the
// identity key.
func ByUniqueColumn(column string) IdentityStrategy {
	return uniqueColumn{column: column}
}

func (s uniqueColumn) Key(row RawRow) (string, error) {
	value := row.Get(s.column)
	if value == "" {
		return "", &ValidationError{Field: s.column, Reason: "identity column is missing or empty"}
	}
	return value, nil
}

type hashedColumn struct {
	column string
}

// ByHashedColumn uses the SHA-256 hex digest of a column's UTF-8 bytes as
// the identity key.
func ByHashedColumn(column string) IdentityStrategy {
	return hashedColumn{column: column}
}

func (s hashedColumn) Key(row RawRow) (string, error) {
	value := row.Get(s.column)
	if value == "" {
		return "", &ValidationError{Field: s.column, Reason: "identity column is missing or empty"}
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:]), nil
}
