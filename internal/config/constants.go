package config

const (
	DefaultDatabasePath = "./bookbatch.db"

	// DefaultDateFormat is the Go layout applied to the published_date
	// column. One fixed format per resource; no inference.
	DefaultDateFormat = "2006-01-02"

	DefaultCategorySeparator = "|"

	DefaultDeleteColumn   = "delete"
	DefaultDeleteSentinel = "1"

	// DefaultEpochFloor is the earliest accepted publication date.
	// Anything older is considered out of print and rejected.
	DefaultEpochFloor = "1900-01-01"
)
