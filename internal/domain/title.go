package domain

import "time"

// Sentinel values written by the cleaner for missing metadata cells.
const (
	UnknownType        = "unknown"
	UnknownReleaseDate = "Unknown"
)

// RawTitle is one row of applicationInformation.csv as read from disk.
// Nil pointers are missing cells.
type RawTitle struct {
	AppID       *int64  // appid
	Type        *string // type (game, dlc, demo, ...)
	Name        *string // name
	ReleaseDate *string // releasedate, e.g. "14-Nov-18"
	FreeToPlay  *bool   // freetoplay
}

// Title is a cleaned catalog entry.
// Corresponds to titles table in PostgreSQL.
type Title struct {
	AppID       int64  // PRIMARY KEY
	Name        string // display name
	Type        string // "unknown" if missing in source
	FreeToPlay  bool   // false if missing in source
	ReleaseDate string // raw string or "Unknown"

	// Derived by the transformer
	ReleaseDateParsed *time.Time // nil if unparseable or "Unknown"
	ReleaseYear       *int       // nil iff ReleaseDateParsed is nil
	TypeCode          int        // dense code over the sorted set of observed types
}
