//go:build debug

package b2d

import "fmt"

func assert(truth bool, msg ...interface{}) bool {
	if !truth {
		panic(fmt.Sprint("Assertion failed: ", msg))
	}
	return true
}
