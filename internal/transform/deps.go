package transform

import (
	"os/exec"
	"sync"
)

var depCache = struct {
	sync.Mutex
	installed map[string]bool
}{}

// HasDepInstalled reports whether the named binary can be found in PATH.
// Lookups are remembered for the life of the process.
func HasDepInstalled(name string) bool {
	depCache.Lock()
	defer depCache.Unlock()
	if installed, ok := depCache.installed[name]; ok {
		return installed
	}
	if depCache.installed == nil {
		depCache.installed = make(map[string]bool)
	}
	_, err := exec.LookPath(name)
	depCache.installed[name] = err == nil
	return err == nil
}

// ResetDepCache forgets every lookup made by HasDepInstalled.
func ResetDepCache() {
	depCache.Lock()
	defer depCache.Unlock()
	depCache.installed = nil
}
