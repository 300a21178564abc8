package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		startA, endA, startB, endB     time.Time
		want                           bool
	}{
		{"identical windows", at(10, 0), at(12, 0), at(10, 0), at(12, 0), true},
		{"partial overlap", at(10, 0), at(12, 0), at(11, 0), at(13, 0), true},
		{"contained window", at(10, 0), at(14, 0), at(11, 0), at(12, 0), true},
		{"containing window", at(11, 0), at(12, 0), at(10, 0), at(14, 0), true},
		{"touching end-to-start counts as conflict", at(10, 0), at(12, 0), at(12, 0), at(13, 0), true},
		{"touching start-to-end counts as conflict", at(12, 0), at(13, 0), at(10, 0), at(12, 0), true},
		{"disjoint before", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"disjoint after", at(13, 0), at(14, 0), at(10, 0), at(11, 0), false},
		{"one minute apart", at(10, 0), at(11, 59), at(12, 0), at(13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.startA, tt.endA, tt.startB, tt.endB))
			// The relation is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.startB, tt.endB, tt.startA, tt.endA))
		})
	}
}
