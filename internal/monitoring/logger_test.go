package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	t.Run("replaces_logger", func(t *testing.T) {
		var captured string
		SetLogger(func(format string, v ...interface{}) {
			captured = fmt.Sprintf(format, v...)
		})
		Logf("value=%d", 7)
		if captured != "value=7" {
			t.Errorf("captured = %q, want value=7", captured)
		}
	})

	t.Run("nil_installs_noop", func(t *testing.T) {
		SetLogger(nil)
		Logf("must not panic %d", 1)
	})
}
