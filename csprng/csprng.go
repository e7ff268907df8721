// Package csprng is the process-wide OS entropy source. It mirrors
// random.hpp's syscall-first, always-correct-fallback shape: on Linux,
// getrandom(2) is tried directly via golang.org/x/sys/unix; everywhere
// else, and on any getrandom error, crypto/rand is used. A CSPRNG
// failure is unrecoverable and aborts the process, as section 7
// requires (CSPRNG failure: no user-visible recovery).
package csprng

import (
	"crypto/rand"
	"encoding/binary"
	"runtime"

	"golang.org/x/sys/unix"
)

// Bytes fills out with uniform random bytes, aborting the process on
// unrecoverable entropy-source failure.
func Bytes(out []byte) {
	if runtime.GOOS == "linux" {
		if fillGetrandom(out) {
			return
		}
	}
	if _, err := rand.Read(out); err != nil {
		panic("csprng: entropy source failure: " + err.Error())
	}
}

// fillGetrandom tries to fill out via the raw getrandom(2) syscall,
// retrying on EINTR, falling back to the caller's crypto/rand path on
// any other error. Returns true if out was fully populated.
func fillGetrandom(out []byte) bool {
	off := 0
	for off < len(out) {
		n, err := unix.Getrandom(out[off:], 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return false
		}
		if n <= 0 {
			return false
		}
		off += n
	}
	return true
}

// U64 draws one uniform 64-bit word.
func U64() uint64 {
	var b [8]byte
	Bytes(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
