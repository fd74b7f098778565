package backend

import (
	"errors"

	"github.com/gogpu/smaa/gpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU reference device.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go GPU device (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
)

// Factory creates a headless device whose default surface has the given
// size. Devices that cannot own a surface ignore the size.
type Factory func(width, height int) (gpu.Device, error)
