package sqlite

import "time"

// Timestamps live in the database as Unix nanoseconds so that `<` comparisons
// are exact. These helpers convert at the repository boundary.

func toNS(t time.Time) int64 {
	return t.UnixNano()
}

func fromNS(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
