package noboiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	updates int
	renders int
	resizes int
}

func newFakePlatform(width, height uint32) *fakePlatform {
	return &fakePlatform{
		window: &fakeWindow{width: width, height: height},
		device: newFakeDevice(width, height),
	}
}

func TestAppRunWithoutPlatform(t *testing.T) {
	err := NewApp(counter{}).Run()
	assert.ErrorIs(t, err, ErrNoPlatform)
}

func TestAppRunPassesOptions(t *testing.T) {
	p := newFakePlatform(1024, 768)
	app := NewApp(counter{}).
		Platform(p).
		Title("rect").
		Size(1024, 768).
		Resizable(false).
		PresentMode(PresentModeImmediate).
		AlphaMode(AlphaModeOpaque).
		Validation(true)

	require.NoError(t, app.Run())
	assert.Equal(t, PlatformOptions{
		Title:       "rect",
		Width:       1024,
		Height:      768,
		Resizable:   false,
		PresentMode: PresentModeImmediate,
		AlphaMode:   AlphaModeOpaque,
		Validation:  true,
		Logger:      p.opts.Logger,
	}, p.opts)
	assert.NotNil(t, p.opts.Logger)
}

func TestAppRunRejectsInvalidConfig(t *testing.T) {
	p := newFakePlatform(800, 600)
	err := NewApp(counter{}).Platform(p).Size(0, 600).Run()
	assert.Error(t, err)
	assert.Zero(t, p.opts.Width, "platform must not be opened")
}

func TestAppRunOpenFailure(t *testing.T) {
	p := newFakePlatform(800, 600)
	p.openErr = ErrNoAdapter

	err := NewApp(counter{}).Platform(p).Run()
	assert.ErrorIs(t, err, ErrNoAdapter)
	assert.True(t, p.closed)
	assert.False(t, p.window.shown)
}

func TestAppRunReleasesResources(t *testing.T) {
	p := newFakePlatform(800, 600)
	pipe := &fakePipeline{}
	app := NewApp(counter{}).
		Platform(p).
		Init(func(_ *AppData, _ *counter, set *PipelineSet) error {
			set.Push(pipe)
			return nil
		}).
		Render(func(_ *AppData, s *counter, _ *Frame) { s.renders++ })
	p.window.batches = [][]Event{{}, {}}

	require.NoError(t, app.Run())
	assert.Equal(t, StateTerminated, app.LoopState())
	assert.True(t, pipe.destroyed)
	assert.True(t, p.device.destroyed)
	assert.True(t, p.window.destroyed)
	assert.True(t, p.closed)
	assert.GreaterOrEqual(t, p.device.waitIdles, 1)
	assert.Equal(t, 3, app.State().renders)
}

func TestAppRunOutOfMemory(t *testing.T) {
	p := newFakePlatform(800, 600)
	p.device.acquireErrs = []error{errors.Wrap(ErrOutOfMemory, "acquire")}
	app := NewApp(counter{}).
		Platform(p).
		Render(func(_ *AppData, s *counter, _ *Frame) { s.renders++ })

	err := app.Run()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Zero(t, app.State().renders)
	assert.Equal(t, 1, p.device.acquires)
	assert.True(t, p.device.destroyed)
}

func TestAppInitErrorLeavesWindowHidden(t *testing.T) {
	p := newFakePlatform(800, 600)
	boom := errors.New("shader did not compile")
	app := NewApp(counter{}).
		Platform(p).
		Init(func(*AppData, *counter, *PipelineSet) error { return boom })

	err := app.Run()
	assert.ErrorIs(t, err, boom)
	assert.False(t, p.window.shown)
	assert.Equal(t, StateUninitialized, app.LoopState())
	assert.True(t, p.closed)
}

func TestAppResizeHook(t *testing.T) {
	p := newFakePlatform(800, 600)
	p.window.batches = [][]Event{{Resized{Width: 0, Height: 0}}, {Resized{Width: 400, Height: 300}}}
	app := NewApp(counter{}).
		Platform(p).
		Resize(func(_ *AppData, s *counter, w, h uint32) {
			s.resizes++
			assert.Equal(t, uint32(400), w)
			assert.Equal(t, uint32(300), h)
		})

	require.NoError(t, app.Run())
	assert.Equal(t, 1, app.State().resizes)
	assert.Equal(t, [][2]uint32{{400, 300}}, p.device.reconfigures)
}

func TestAppConfiguredAfterRun(t *testing.T) {
	p := newFakePlatform(800, 600)
	app := NewApp(counter{}).Platform(p)
	require.NoError(t, app.Run())

	assert.PanicsWithValue(t, "noboiler: App configured after Run", func() {
		app.Title("again")
	})
}

func TestAppConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "from file"
	cfg.PresentMode = PresentModeMailbox

	app := NewApp(counter{}).Config(cfg).WatchShaders("a.wgsl")
	got := app.Settings()
	assert.Equal(t, "from file", got.Title)
	assert.Equal(t, PresentModeMailbox, got.PresentMode)
	assert.Equal(t, []string{"a.wgsl"}, got.WatchShaders)
	assert.Equal(t, StateUninitialized, app.LoopState())
}

func TestAppHooksReplacesAll(t *testing.T) {
	p := newFakePlatform(800, 600)
	app := NewApp(counter{}).
		Platform(p).
		Update(func(*AppData, *counter) { t.Fatal("replaced hook called") }).
		Hooks(HookSet[counter]{
			Update: func(_ *AppData, s *counter) { s.updates++ },
		})

	require.NoError(t, app.Run())
	assert.Equal(t, 1, app.State().updates)
}

func TestAppWatchShadersMissingDirectory(t *testing.T) {
	p := newFakePlatform(800, 600)
	app := NewApp(counter{}).
		Platform(p).
		WatchShaders(filepath.Join(t.TempDir(), "nope", "shader.wgsl"))

	require.NoError(t, app.Run(), "hot reload failures are not fatal")
}

func TestAppWatchShaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	p := newFakePlatform(800, 600)
	builds := 0
	app := NewApp(counter{}).
		Platform(p).
		WatchShaders(path).
		Init(func(_ *AppData, _ *counter, set *PipelineSet) error {
			builds++
			set.Push(&fakePipeline{id: builds})
			return nil
		}).
		Update(func(data *AppData, s *counter) {
			s.updates++
			if s.updates == 1 {
				require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
				time.Sleep(200 * time.Millisecond)
			}
		})
	p.window.batches = [][]Event{{}}

	require.NoError(t, app.Run())
	assert.Equal(t, 2, builds)
}
