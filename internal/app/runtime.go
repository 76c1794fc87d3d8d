package app

import (
	"os"
	"sync"
)

// TestModeEnv marks a process started by `go test`; main exits before
// touching the directory or binding a port when it is set to "1".
const TestModeEnv = "CEPADMIN_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether the process runs under tests.
func InTestMode() bool {
	return testMode()
}
