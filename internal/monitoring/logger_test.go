package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("step %d dispatched", 3)
	if got != "step 3 dispatched" {
		t.Errorf("custom logger got %q", got)
	}

	// nil installs a no-op, not a nil function
	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf should never be nil")
	}
	Logf("must not panic")
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should have a default")
	}
}
