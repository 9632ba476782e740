package input

import (
	"testing"
	"time"
)

func TestDoubleTap(t *testing.T) {
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

	tc := []struct {
		name     string
		offsets  []time.Duration
		expected []GestureAction
	}{
		{
			"single press restarts",
			[]time.Duration{0},
			[]GestureAction{GestureRestart},
		},
		{
			"double press inside window",
			[]time.Duration{0, 300 * time.Millisecond},
			[]GestureAction{GestureRestart, GesturePrevious},
		},
		{
			"slow presses both restart",
			[]time.Duration{0, 600 * time.Millisecond},
			[]GestureAction{GestureRestart, GestureRestart},
		},
		{
			"counter resets after double",
			[]time.Duration{0, 200 * time.Millisecond, 400 * time.Millisecond},
			[]GestureAction{GestureRestart, GesturePrevious, GestureRestart},
		},
		{
			"press at window boundary restarts",
			[]time.Duration{0, 500 * time.Millisecond},
			[]GestureAction{GestureRestart, GestureRestart},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			gesture := NewDoubleTap(500 * time.Millisecond)
			for i, offset := range tt.offsets {
				if got := gesture.Observe(base.Add(offset)); got != tt.expected[i] {
					t.Errorf("press %d: expected %v, got %v", i, tt.expected[i], got)
				}
			}
		})
	}
}
