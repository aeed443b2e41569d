package spmv

import (
	"log"
	"os"
)

// Optional diagnostics, disabled by default. Set ELLPACK_DEBUG to any
// non-empty value to trace strategy selection on the standard logger.
// Not part of the computational contract.
var debugEnabled = os.Getenv("ELLPACK_DEBUG") != ""

func debugf(format string, args ...any) {
	if debugEnabled {
		log.Printf("spmv: "+format, args...)
	}
}
