package logger

import "testing"

var _ Logger = Test{}

// Test is a Logger implementation that forwards every entry to a
// testing.T, so component logs show up interleaved with test output.
type Test struct{ t *testing.T }

// NewTest wraps the provided testing.T into a Test logger.
func NewTest(t *testing.T) Test {
	return Test{t: t}
}

func (l Test) log(level, msg string, fields []Field) {
	l.t.Logf("%-7s %s %+v", level, msg, fields)
}

// Debug records a debug entry on the test log.
func (l Test) Debug(msg string, fields ...Field) { l.log("[debug]", msg, fields) }

// Info records an info entry on the test log.
func (l Test) Info(msg string, fields ...Field) { l.log("[info]", msg, fields) }

// Error records an error entry on the test log.
func (l Test) Error(msg string, fields ...Field) { l.log("[error]", msg, fields) }
