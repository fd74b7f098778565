// Package backend provides a pluggable registry of rendering devices.
//
// Device implementations live in sub-packages and register a Factory from
// their init() functions. Importing a sub-package for its side effect
// makes it selectable by name:
//
//	import _ "github.com/gogpu/smaa/backend/software"
//
// # Device Selection
//
// Use Default() to open the best available device, or Open() to request
// a specific backend by name:
//
//	// Open the default (best available) device
//	name, dev, err := backend.Default(800, 600)
//
//	// Or request a specific backend
//	dev, err := backend.Open("software", 800, 600)
//
// # Available Backends
//
//   - "software": CPU reference device (always available)
//   - "wgpu": GPU device via gogpu/wgpu (build tag !nogpu)
//
// The OpenGL device in backend/gl needs a current context and is created
// directly with gl.New rather than through the registry.
package backend
