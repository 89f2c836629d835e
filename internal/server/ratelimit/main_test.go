package ratelimit

import (
	"testing"

	"go.uber.org/goleak"
)

// Every limiter started by a test must have its sweeper stopped.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
