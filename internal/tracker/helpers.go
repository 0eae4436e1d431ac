package tracker

import (
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("tracker: unparseable timestamp %q", s)
}
