package safego

import (
	"testing"
	"time"
)

func TestGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})

	Go(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("goroutine did not run within timeout")
	}
}

func TestGo_RecoversPanic(t *testing.T) {
	done := make(chan struct{})

	Go(func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
		// panic was recovered, process still alive
	case <-time.After(2 * time.Second):
		t.Error("goroutine did not complete after panic")
	}
}
