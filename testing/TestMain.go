// Package testing is blank-imported by test packages for its init side
// effect: it marks the process as running under tests before any package
// reads the flag.
package testing

import "os"

func init() {
	_ = os.Setenv("CEPADMIN_TEST_MODE", "1")
	if os.Getenv("AUTH_MODE") == "" {
		_ = os.Setenv("AUTH_MODE", "header")
	}
}
