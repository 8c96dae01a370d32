package noboiler

import (
	"log/slog"

	"github.com/pkg/errors"
)

// App collects the caller state, hooks and settings, then runs the loop.
//
//	err := noboiler.NewApp(State{}).
//		Platform(p).
//		Init(initPipelines).
//		Update(update).
//		Render(render).
//		PresentMode(noboiler.PresentModeImmediate).
//		Run()
type App[S any] struct {
	state    S
	hooks    HookSet[S]
	cfg      Config
	platform Platform
	clock    Clock
	log      *slog.Logger
	loop     *Loop[S]
}

// NewApp returns an App holding state with the default Config.
func NewApp[S any](state S) *App[S] {
	return &App[S]{
		state: state,
		cfg:   DefaultConfig(),
		log:   NopLogger(),
	}
}

func (a *App[S]) Init(fn InitFunc[S]) *App[S] {
	a.mustBuild()
	a.hooks.Init = fn
	return a
}

func (a *App[S]) Input(fn InputFunc[S]) *App[S] {
	a.mustBuild()
	a.hooks.Input = fn
	return a
}

func (a *App[S]) Resize(fn ResizeFunc[S]) *App[S] {
	a.mustBuild()
	a.hooks.Resize = fn
	return a
}

func (a *App[S]) Update(fn UpdateFunc[S]) *App[S] {
	a.mustBuild()
	a.hooks.Update = fn
	return a
}

func (a *App[S]) Render(fn RenderFunc[S]) *App[S] {
	a.mustBuild()
	a.hooks.Render = fn
	return a
}

// Hooks replaces every hook at once.
func (a *App[S]) Hooks(h HookSet[S]) *App[S] {
	a.mustBuild()
	a.hooks = h
	return a
}

func (a *App[S]) Title(title string) *App[S] {
	a.mustBuild()
	a.cfg.Title = title
	return a
}

func (a *App[S]) Resizable(resizable bool) *App[S] {
	a.mustBuild()
	a.cfg.Resizable = resizable
	return a
}

// Size sets the initial window size.
func (a *App[S]) Size(width, height uint32) *App[S] {
	a.mustBuild()
	a.cfg.Width, a.cfg.Height = width, height
	return a
}

func (a *App[S]) PresentMode(mode PresentMode) *App[S] {
	a.mustBuild()
	a.cfg.PresentMode = mode
	return a
}

func (a *App[S]) AlphaMode(mode AlphaMode) *App[S] {
	a.mustBuild()
	a.cfg.AlphaMode = mode
	return a
}

// Validation enables the graphics API's validation layers when available.
func (a *App[S]) Validation(enabled bool) *App[S] {
	a.mustBuild()
	a.cfg.Validation = enabled
	return a
}

// WatchShaders rebuilds the pipelines whenever one of paths changes on disk.
func (a *App[S]) WatchShaders(paths ...string) *App[S] {
	a.mustBuild()
	a.cfg.WatchShaders = append(a.cfg.WatchShaders, paths...)
	return a
}

// Config replaces all settings with cfg.
func (a *App[S]) Config(cfg Config) *App[S] {
	a.mustBuild()
	a.cfg = cfg
	return a
}

// Logger sets the logger used by the loop and passed to the platform.
func (a *App[S]) Logger(l *slog.Logger) *App[S] {
	a.mustBuild()
	a.log = OrNop(l)
	return a
}

func (a *App[S]) Platform(p Platform) *App[S] {
	a.mustBuild()
	a.platform = p
	return a
}

// Clock replaces the time source of the frame clock.
func (a *App[S]) Clock(c Clock) *App[S] {
	a.mustBuild()
	a.clock = c
	return a
}

// Settings returns the current settings.
func (a *App[S]) Settings() Config { return a.cfg }

// State returns the caller state. It is safe to read after Run returned.
func (a *App[S]) State() *S { return &a.state }

// LoopState reports the lifecycle state of the running loop.
func (a *App[S]) LoopState() State {
	if a.loop == nil {
		return StateUninitialized
	}
	return a.loop.State()
}

func (a *App[S]) mustBuild() {
	if a.loop != nil {
		panic("noboiler: App configured after Run")
	}
}

// Run opens the window, runs the init hook, shows the window and dispatches
// events until the window is closed or the device runs out of memory. Errors
// during start-up are returned before the window is shown.
func (a *App[S]) Run() error {
	if a.platform == nil {
		return ErrNoPlatform
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	window, device, err := a.platform.Open(PlatformOptions{
		Title:       a.cfg.Title,
		Width:       a.cfg.Width,
		Height:      a.cfg.Height,
		Resizable:   a.cfg.Resizable,
		PresentMode: a.cfg.PresentMode,
		AlphaMode:   a.cfg.AlphaMode,
		Validation:  a.cfg.Validation,
		Logger:      a.log,
	})
	if err != nil {
		a.platform.Close()
		return errors.Wrap(err, "noboiler: opening window")
	}

	a.loop = NewLoop(a.hooks, &a.state, window, device, a.clock, a.log)
	defer func() {
		a.loop.Close()
		device.Destroy()
		window.Destroy()
		a.platform.Close()
	}()

	if len(a.cfg.WatchShaders) > 0 {
		w, err := WatchFiles(a.cfg.WatchShaders, a.log)
		if err != nil {
			a.log.Warn("noboiler: shader hot reload disabled", "err", err)
		} else {
			defer w.Close()
			a.loop.Watch(w.Changed())
		}
	}
	return a.loop.Run()
}
