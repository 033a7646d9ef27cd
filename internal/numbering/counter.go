// Package numbering issues sequential permit numbers scoped to the calendar year.
package numbering

import (
	"context"
	"fmt"
	"time"
)

// CounterStore hands out the next permit number for a given moment in time.
// Numbers are formatted as "YY-NNN" and the sequence restarts at 1 whenever
// the two-digit year changes.
type CounterStore interface {
	Next(ctx context.Context, now time.Time) (string, error)
}

// Format renders a year and sequence value as a permit number.
func Format(year, seq int) string {
	return fmt.Sprintf("%02d-%03d", year%100, seq)
}
