package noboiler

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// State is the run loop's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRedrawing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRedrawing:
		return "redrawing"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Loop dispatches window events to a device context and the caller's hooks.
// Everything it does happens on the goroutine calling Run or Dispatch.
type Loop[S any] struct {
	hooks  HookSet[S]
	state  *S
	window Window
	device DeviceContext
	clock  *FrameClock
	data   *AppData
	log    *slog.Logger

	changes <-chan string

	current State
	err     error
}

// NewLoop creates a loop in StateUninitialized. The initial size is taken
// from the device context's configuration.
func NewLoop[S any](hooks HookSet[S], state *S, window Window, device DeviceContext, clock Clock, log *slog.Logger) *Loop[S] {
	log = OrNop(log)
	fc := NewFrameClock(clock)
	cfg := device.Config()
	return &Loop[S]{
		hooks:  hooks,
		state:  state,
		window: window,
		device: device,
		clock:  fc,
		log:    log,
		data: &AppData{
			device:    device,
			clock:     fc,
			pipelines: &PipelineSet{},
			log:       log,
			width:     cfg.Width,
			height:    cfg.Height,
		},
	}
}

// Watch makes every value received from changes schedule a pipeline rebuild.
func (l *Loop[S]) Watch(changes <-chan string) {
	l.changes = changes
}

func (l *Loop[S]) State() State { return l.current }

// Data returns the view handed to hooks.
func (l *Loop[S]) Data() *AppData { return l.data }

// Err returns the cause of an abnormal termination.
func (l *Loop[S]) Err() error { return l.err }

// Init runs the init hook and shows the window.
func (l *Loop[S]) Init() error {
	if l.current != StateUninitialized {
		return errors.Errorf("noboiler: init in state %s", l.current)
	}
	if err := l.buildPipelines(l.data.pipelines); err != nil {
		return err
	}
	l.current = StateReady
	l.window.Show()
	w, h := l.data.Size()
	l.log.Info("noboiler: window shown", "width", w, "height", h, "pipelines", l.data.pipelines.Len())
	return nil
}

// Run initializes the loop if needed and dispatches events until the loop
// terminates. It returns nil after a close request.
func (l *Loop[S]) Run() error {
	if l.current == StateUninitialized {
		if err := l.Init(); err != nil {
			return err
		}
	}
	l.window.RequestRedraw()
	for l.current != StateTerminated {
		for _, ev := range l.window.WaitEvents() {
			l.Dispatch(ev)
			if l.current == StateTerminated {
				break
			}
		}
		l.Dispatch(EventsCleared{})
	}
	return l.err
}

// Dispatch handles a single event.
func (l *Loop[S]) Dispatch(ev Event) {
	if l.current == StateTerminated || l.current == StateUninitialized {
		return
	}
	switch ev.(type) {
	case RedrawRequested:
		l.redraw()
	case EventsCleared:
		l.window.RequestRedraw()
	default:
		if l.hooks.Input == nil || !l.hooks.Input(l.data, l.state, ev) {
			l.handleWindowEvent(ev)
		}
	}
	if l.data.exit && l.current != StateTerminated {
		l.terminate(nil)
	}
}

func (l *Loop[S]) handleWindowEvent(ev Event) {
	switch e := ev.(type) {
	case CloseRequested:
		l.terminate(nil)
	case Resized:
		l.resize(e.Width, e.Height)
	case ScaleFactorChanged:
		l.resize(e.Width, e.Height)
	}
}

func (l *Loop[S]) resize(width, height uint32) {
	if width == 0 || height == 0 {
		l.log.Debug("noboiler: ignoring degenerate resize", "width", width, "height", height)
		return
	}
	l.data.width, l.data.height = width, height
	if err := l.device.Reconfigure(width, height); err != nil {
		if IsFatal(err) {
			l.terminate(err)
			return
		}
		l.log.Warn("noboiler: reconfigure failed", "width", width, "height", height, "err", err)
	}
	if l.hooks.Resize != nil {
		l.hooks.Resize(l.data, l.state, width, height)
	}
}

func (l *Loop[S]) redraw() {
	l.current = StateRedrawing
	defer func() {
		if l.current == StateRedrawing {
			l.current = StateReady
		}
	}()

	l.pollChanges()
	if l.data.rebuild {
		l.rebuildPipelines()
	}

	l.clock.Tick()
	if l.hooks.Update != nil {
		l.hooks.Update(l.data, l.state)
	}
	if l.data.exit || l.hooks.Render == nil {
		return
	}

	frame, err := l.device.AcquireFrame()
	if err != nil {
		l.frameFailed(err)
		return
	}
	l.hooks.Render(l.data, l.state, frame)
	if err := l.device.Submit(frame); err != nil {
		l.frameFailed(err)
		return
	}
	if err := l.device.Present(frame); err != nil {
		l.frameFailed(err)
	}
}

func (l *Loop[S]) frameFailed(err error) {
	if IsFatal(err) {
		l.log.Error("noboiler: fatal frame error", "err", err)
		l.terminate(err)
		return
	}
	if IsTransient(err) {
		l.log.Debug("noboiler: skipping frame", "err", err)
	} else {
		l.log.Warn("noboiler: frame failed, reconfiguring surface", "err", err)
	}
	w, h := l.data.Size()
	if err := l.device.Reconfigure(w, h); err != nil {
		if IsFatal(err) {
			l.terminate(err)
			return
		}
		l.log.Warn("noboiler: reconfigure failed", "width", w, "height", h, "err", err)
	}
}

func (l *Loop[S]) pollChanges() {
	if l.changes == nil {
		return
	}
	for {
		select {
		case path := <-l.changes:
			l.log.Info("noboiler: shader changed", "path", path)
			l.data.rebuild = true
		default:
			return
		}
	}
}

func (l *Loop[S]) buildPipelines(set *PipelineSet) error {
	if l.hooks.Init == nil {
		return nil
	}
	return errors.Wrap(l.hooks.Init(l.data, l.state, set), "noboiler: init hook")
}

func (l *Loop[S]) rebuildPipelines() {
	l.data.rebuild = false
	if l.hooks.Init == nil {
		return
	}
	l.device.WaitIdle()
	next := &PipelineSet{}
	if err := l.buildPipelines(next); err != nil {
		next.destroy()
		l.log.Warn("noboiler: pipeline rebuild failed, keeping previous pipelines", "err", err)
		return
	}
	old := l.data.pipelines
	l.data.pipelines = next
	old.destroy()
	l.log.Info("noboiler: pipelines rebuilt", "pipelines", next.Len())
}

func (l *Loop[S]) terminate(err error) {
	l.current = StateTerminated
	if err != nil {
		l.err = errors.Wrap(err, "noboiler: run loop terminated")
	}
}

// Close waits for the device and releases the pipeline set.
func (l *Loop[S]) Close() {
	l.device.WaitIdle()
	l.data.pipelines.destroy()
}
