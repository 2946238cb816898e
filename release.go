//go:build !debug

package b2d

import (
	"fmt"
	"log"
)

// assert logs a failed invariant and reports it so the caller can skip the
// offending operation. Build with -tags debug to panic instead.
func assert(truth bool, msg ...interface{}) bool {
	if !truth {
		log.Println(fmt.Sprint("Assertion failed: ", msg))
	}
	return truth
}
