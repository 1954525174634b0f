package sync

import (
	"testing"
	"time"
)

func TestAdvanceCursor(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil cursor advances to max eligible", func(t *testing.T) {
		got := AdvanceCursor(nil, []time.Time{t0, t0.Add(2 * time.Second), t0.Add(time.Second)})
		if got == nil || !got.Equal(t0.Add(2 * time.Second)) {
			t.Errorf("AdvanceCursor() = %v, want %v", got, t0.Add(2*time.Second))
		}
	})

	t.Run("no eligible items keeps cursor", func(t *testing.T) {
		got := AdvanceCursor(&t0, nil)
		if got == nil || !got.Equal(t0) {
			t.Errorf("AdvanceCursor() = %v, want %v", got, t0)
		}
	})

	t.Run("never moves backwards", func(t *testing.T) {
		got := AdvanceCursor(&t0, []time.Time{t0.Add(-time.Hour)})
		if got == nil || !got.Equal(t0) {
			t.Errorf("AdvanceCursor() = %v, want %v", got, t0)
		}
	})

	t.Run("nil cursor with no eligible stays nil", func(t *testing.T) {
		if got := AdvanceCursor(nil, nil); got != nil {
			t.Errorf("AdvanceCursor() = %v, want nil", got)
		}
	})
}
