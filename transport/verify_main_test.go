package transport

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain is used to control the execution of all tests run within this package (including _test packages).
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
