// Package guard serializes maintenance operations. Promotion review and
// migration both rewrite collections wholesale, so only one may run at a
// time within a process.
package guard

import (
	"errors"
	"sync"
)

// ErrBusy is returned when another maintenance operation holds the guard.
var ErrBusy = errors.New("another maintenance operation is in progress")

var mu sync.Mutex

// Acquire takes the maintenance guard without blocking. The caller must
// Release on success.
func Acquire() error {
	if !mu.TryLock() {
		return ErrBusy
	}
	return nil
}

// Release frees the maintenance guard.
func Release() {
	mu.Unlock()
}
