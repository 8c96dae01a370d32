package noboiler

import (
	"log/slog"
	"time"
)

// InitFunc builds the caller's pipelines before the window is shown. It runs
// again when a pipeline rebuild is requested. A returned error aborts start-up.
type InitFunc[S any] func(data *AppData, state *S, pipelines *PipelineSet) error

// InputFunc receives window events before default handling. Returning true
// consumes the event.
type InputFunc[S any] func(data *AppData, state *S, ev Event) bool

// ResizeFunc is called after the surface was reconfigured to a new size.
type ResizeFunc[S any] func(data *AppData, state *S, width, height uint32)

// UpdateFunc runs once per redraw cycle, before a frame is acquired.
type UpdateFunc[S any] func(data *AppData, state *S)

// RenderFunc records the commands for one frame. The core submits and
// presents the frame after it returns.
type RenderFunc[S any] func(data *AppData, state *S, frame *Frame)

// HookSet holds the optional caller hooks. A nil hook skips its step.
type HookSet[S any] struct {
	Init   InitFunc[S]
	Input  InputFunc[S]
	Resize ResizeFunc[S]
	Update UpdateFunc[S]
	Render RenderFunc[S]
}

// AppData is the read-only view of the running application handed to hooks.
// Hooks must not keep it past their own invocation.
type AppData struct {
	device    DeviceContext
	clock     *FrameClock
	pipelines *PipelineSet
	log       *slog.Logger

	width, height uint32

	exit    bool
	rebuild bool
}

// Device returns the device context. Backends provide helpers to reach their
// concrete context type.
func (d *AppData) Device() DeviceContext { return d.device }

// Config returns the current surface configuration.
func (d *AppData) Config() SurfaceConfig { return d.device.Config() }

// Size returns the last known non-zero window size.
func (d *AppData) Size() (width, height uint32) { return d.width, d.height }

// Delta returns the last frame interval in seconds.
func (d *AppData) Delta() float64 { return d.clock.Delta() }

// FPS returns the reciprocal of the last frame interval.
func (d *AppData) FPS() float64 { return d.clock.FPS() }

func (d *AppData) Frames() uint64 { return d.clock.Frames() }

func (d *AppData) Elapsed() time.Duration { return d.clock.Elapsed() }

// Pipelines returns the pipelines built by the init hook.
func (d *AppData) Pipelines() *PipelineSet { return d.pipelines }

func (d *AppData) Logger() *slog.Logger { return d.log }

// Exit asks the run loop to terminate as if the window was closed.
func (d *AppData) Exit() { d.exit = true }

// RequestPipelineRebuild schedules the init hook to rebuild the pipeline set
// at the start of the next redraw cycle.
func (d *AppData) RequestPipelineRebuild() { d.rebuild = true }
