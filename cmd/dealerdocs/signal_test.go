package main

// Notes:
// - notifyContext: we test the observable behavior (cancellation via stop()
//   and parent propagation). Real signal delivery is platform specific and
//   not tested.

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context cancellation
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cancel     func(stop, cancelParent func())
		wantClosed bool
	}{
		{"open until stopped", func(func(), func()) {}, false},
		{"stop cancels", func(stop, _ func()) { stop() }, true},
		{"parent cancels", func(_, cancelParent func()) { cancelParent() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent, cancelParent := context.WithCancel(context.Background())
			defer cancelParent()
			ctx, stop := notifyContext(parent)
			defer stop()

			tt.cancel(stop, cancelParent)

			select {
			case <-ctx.Done():
				if !tt.wantClosed {
					t.Fatal("context cancelled unexpectedly")
				}
			default:
				if tt.wantClosed {
					t.Fatal("context should be cancelled")
				}
			}
		})
	}
}
