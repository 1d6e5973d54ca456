package util

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for a deadline. Values without a zone are read as UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid deadline %q", value)
}
