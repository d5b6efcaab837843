package fsutil

import (
	"path/filepath"
	"sync"
)

// pathLocks serialises reads and writes of the same file within the process
var pathLocks sync.Map

// lockPath locks path and returns the matching unlock
func lockPath(path string) func() {
	actual, _ := pathLocks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
