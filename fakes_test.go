package noboiler

import (
	"time"

	"github.com/gogpu/gputypes"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeWindow replays scripted event batches. Once the script runs out it
// reports CloseRequested so Run always ends.
type fakeWindow struct {
	batches        [][]Event
	redrawPending  bool
	redrawRequests int
	shown          bool
	destroyed      bool
	width, height  uint32
}

func (w *fakeWindow) WaitEvents() []Event {
	var batch []Event
	if w.redrawPending {
		w.redrawPending = false
		batch = append(batch, RedrawRequested{})
	}
	if len(w.batches) > 0 {
		batch = append(batch, w.batches[0]...)
		w.batches = w.batches[1:]
	} else {
		batch = append(batch, CloseRequested{})
	}
	return batch
}

func (w *fakeWindow) RequestRedraw() {
	w.redrawRequests++
	w.redrawPending = true
}

func (w *fakeWindow) Show() { w.shown = true }

func (w *fakeWindow) Size() (uint32, uint32) { return w.width, w.height }

func (w *fakeWindow) Destroy() { w.destroyed = true }

type fakeEncoder struct{}

func (fakeEncoder) Label() string { return "Render Encoder" }

type fakeView struct{ w, h uint32 }

func (v fakeView) Size() (uint32, uint32) { return v.w, v.h }

// fakeDevice records every call the loop makes. acquireErrs is consumed one
// entry per AcquireFrame; a nil entry or an empty script succeeds.
type fakeDevice struct {
	cfg SurfaceConfig

	acquireErrs []error
	submitErr   error
	presentErr  error

	acquires  int
	submits   int
	presents  int
	waitIdles int
	destroyed bool

	reconfigures [][2]uint32

	trace *[]string
}

func newFakeDevice(width, height uint32) *fakeDevice {
	return &fakeDevice{cfg: SurfaceConfig{
		Format:      gputypes.TextureFormatBGRA8Unorm,
		Width:       width,
		Height:      height,
		PresentMode: PresentModeFifo,
	}}
}

func (d *fakeDevice) record(s string) {
	if d.trace != nil {
		*d.trace = append(*d.trace, s)
	}
}

func (d *fakeDevice) Config() SurfaceConfig { return d.cfg }

func (d *fakeDevice) Reconfigure(width, height uint32) error {
	d.reconfigures = append(d.reconfigures, [2]uint32{width, height})
	d.record("reconfigure")
	if width == 0 || height == 0 {
		return nil
	}
	d.cfg.Width, d.cfg.Height = width, height
	return nil
}

func (d *fakeDevice) AcquireFrame() (*Frame, error) {
	d.acquires++
	d.record("acquire")
	if len(d.acquireErrs) > 0 {
		err := d.acquireErrs[0]
		d.acquireErrs = d.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &Frame{
		Encoder: fakeEncoder{},
		View:    fakeView{d.cfg.Width, d.cfg.Height},
		Width:   d.cfg.Width,
		Height:  d.cfg.Height,
	}, nil
}

func (d *fakeDevice) Submit(*Frame) error {
	d.submits++
	d.record("submit")
	return d.submitErr
}

func (d *fakeDevice) Present(*Frame) error {
	d.presents++
	d.record("present")
	return d.presentErr
}

func (d *fakeDevice) WaitIdle() { d.waitIdles++ }

func (d *fakeDevice) Destroy() { d.destroyed = true }

type fakePipeline struct {
	id        int
	destroyed bool
}

func (p *fakePipeline) Destroy() { p.destroyed = true }

type fakePlatform struct {
	window  *fakeWindow
	device  *fakeDevice
	openErr error
	opts    PlatformOptions
	closed  bool
}

func (p *fakePlatform) Open(opts PlatformOptions) (Window, DeviceContext, error) {
	p.opts = opts
	if p.openErr != nil {
		return nil, nil, p.openErr
	}
	return p.window, p.device, nil
}

func (p *fakePlatform) Close() { p.closed = true }
