// Package noboiler runs the window event loop and per-frame GPU schedule for
// applications that draw into a window, so callers only supply hooks.
//
// An App owns the caller's state value and a HookSet. Run opens a hidden
// window through a Platform, runs the init hook to build the PipelineSet,
// shows the window and then, for every redraw, ticks the frame clock, calls
// update, acquires a frame, calls render, submits and presents. Surface loss
// and outdated swapchains are recovered by reconfiguring and skipping the
// frame. Out-of-memory ends the loop.
//
// The package itself holds no graphics API code. The vulkan subpackage
// implements DeviceContext and the resource builders, the window subpackage
// wraps GLFW and desktop wires both into a Platform.
package noboiler
