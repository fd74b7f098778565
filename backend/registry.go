package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/smaa/gpu"
)

// registry holds registered device factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for device selection (first that opens wins).
	// The GPU device is preferred, the software device is the fallback.
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a factory with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open creates a device from the named backend.
func Open(name string, width, height int) (gpu.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, err := factory(width, height)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	return dev, nil
}

// Default opens the best available backend based on priority.
// Priority order: wgpu > software, then any other registered backend.
// The name of the opened backend is returned alongside the device.
func Default(width, height int) (string, gpu.Device, error) {
	tried := make(map[string]bool, len(backendPriority))
	var lastErr error

	for _, name := range backendPriority {
		tried[name] = true
		if !IsRegistered(name) {
			continue
		}
		dev, err := Open(name, width, height)
		if err == nil {
			return name, dev, nil
		}
		lastErr = err
	}

	// Fallback: any remaining backend, in name order
	for _, name := range Available() {
		if tried[name] {
			continue
		}
		dev, err := Open(name, width, height)
		if err == nil {
			return name, dev, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", nil, lastErr
	}
	return "", nil, ErrBackendNotAvailable
}

// MustDefault opens the default backend or panics.
func MustDefault(width, height int) gpu.Device {
	_, dev, err := Default(width, height)
	if err != nil {
		panic("backend: no backend available: " + err.Error())
	}
	return dev
}
