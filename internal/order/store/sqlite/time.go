package sqlite

import (
	"fmt"
	"time"
)

// SQLite has no native datetime type; timestamps are stored as RFC3339 TEXT.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("order store: parse time %q: %w", s, err)
	}
	return t, nil
}
