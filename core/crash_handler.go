package core

import (
	"fmt"
	"os"
	"runtime/debug"
)

// emergencySequences restore a usable terminal without depending on the
// terminal package (which imports core). Cursor show, alt screen exit,
// attribute reset, auto-wrap on, full reset
var emergencySequences = []byte("\x1b[?25h\x1b[?1049l\x1b[0m\x1b[?7h")

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	// Restore terminal to sane state immediately
	os.Stdout.Write(emergencySequences)
	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
