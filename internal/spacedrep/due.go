package spacedrep

import "time"

// DueItems returns the items whose review date is set and not after now,
// preserving input order. A nil slice yields an empty, non-nil result.
func DueItems(items []Item, now time.Time) []Item {
	due := make([]Item, 0, len(items))
	for _, it := range items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}
	return due
}
