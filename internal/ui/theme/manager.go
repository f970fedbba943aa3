package theme

import (
	"sort"
	"sync"
)

var globalManager = &manager{
	themes: make(map[string]Theme),
}

type manager struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	current Theme
}

// RegisterTheme adds t to the registry under t.Name.
// The first registered theme becomes the default.
func RegisterTheme(t Theme) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.themes[t.Name] = t
	if globalManager.current.Name == "" {
		globalManager.current = t
	}
}

// SetTheme switches to a registered theme by name.
// Returns true if the theme was found and set.
func SetTheme(name string) bool {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	if t, ok := globalManager.themes[name]; ok {
		globalManager.current = t
		return true
	}
	return false
}

// Current returns the active theme.
func Current() Theme {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return globalManager.current
}

// Available returns all registered theme names in sorted order.
func Available() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.themes))
	for name := range globalManager.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CycleTheme switches to the next theme in sorted order and returns its name.
func CycleTheme() string {
	names := Available()
	if len(names) == 0 {
		return ""
	}
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	next := names[0]
	for i, name := range names {
		if name == globalManager.current.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	globalManager.current = globalManager.themes[next]
	return next
}
