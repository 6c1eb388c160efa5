// Package xunsafe provides a more convenient interface for performing unsafe
// operations than Go's built-in package unsafe.
//
// The allocator core goes through this package for every raw-memory access,
// so that the unsafe surface stays in one well-audited place.
package xunsafe

import (
	"sync"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by holding a zero-length array of [sync.Mutex], which vet's
// copylocks check treats as a lock.
type NoCopy [0]sync.Mutex

// Int is any integer type.
type Int interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64 | uintptr
}
