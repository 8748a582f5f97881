package dblock

import (
	"net"
	"time"
)

const lockAddr = "127.0.0.1:45433"

// Acquire serializes test packages that share the same database. It blocks
// until the local lock port is free and returns the release function.
func Acquire() func() {
	for {
		ln, err := net.Listen("tcp", lockAddr)
		if err == nil {
			return func() { ln.Close() }
		}
		time.Sleep(50 * time.Millisecond)
	}
}
