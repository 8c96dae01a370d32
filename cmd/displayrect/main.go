// Command displayrect draws a single colored rectangle from an indexed quad.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andewx/noboiler"
	"github.com/andewx/noboiler/desktop"
	"github.com/andewx/noboiler/vulkan"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

type coloredVertex struct {
	Position [3]float32
	Color    [3]float32
}

var (
	purple = [3]float32{0.2, 0.0, 0.3}

	quad = []coloredVertex{
		{Position: [3]float32{-0.5, 0.5, 0}, Color: purple},
		{Position: [3]float32{-0.5, -0.5, 0}, Color: purple},
		{Position: [3]float32{0.5, 0.5, 0}, Color: purple},
		{Position: [3]float32{0.5, -0.5, 0}, Color: purple},
	}
	quadIndices = []uint32{0, 1, 2, 2, 1, 3}

	eye = mgl32.Vec3{0, 0, 2}
)

// state holds the quad's rotation about the y axis when spinning.
type state struct {
	spin  bool
	angle float32
}

func main() {
	configPath := flag.String("config", "cmd/config.toml", "TOML settings file")
	shaders := flag.String("shaders", "cmd/shaders", "directory holding the WGSL shaders")
	spin := flag.Bool("spin", false, "rotate the quad in perspective")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := noboiler.LoadConfig(*configPath)
	if err != nil {
		log.Warn("using default settings", "err", err)
		cfg = noboiler.DefaultConfig()
	}
	cfg.Title = "display rect"
	shaderPath := filepath.Join(*shaders, "shader_basic_color.wgsl")

	err = desktop.NewApp(state{spin: *spin}).
		Config(cfg).
		Logger(log).
		Init(func(data *noboiler.AppData, _ *state, pipelines *noboiler.PipelineSet) error {
			p, err := vulkan.PipelineFromShaderFile(shaderPath, data).
				AddVertexBuffer(noboiler.LayoutOf[coloredVertex]()).
				Build()
			if err != nil {
				return err
			}
			pipelines.Push(p)
			return nil
		}).
		Update(func(data *noboiler.AppData, s *state) {
			if s.spin {
				s.angle += float32(data.Delta())
			}
		}).
		Render(render).
		Run()
	if err != nil {
		log.Error("display rect", "err", err)
		os.Exit(1)
	}
}

func render(data *noboiler.AppData, s *state, frame *noboiler.Frame) {
	log := data.Logger()
	enc := frame.Encoder.(*vulkan.Encoder)

	verts := quad
	if s.spin {
		w, h := data.Size()
		verts = project(quad, s.angle, float32(w)/float32(h))
	}
	vertices, err := vulkan.NewVertexBuffer(data, verts).Build()
	if err != nil {
		log.Error("vertex buffer", "err", err)
		return
	}
	enc.Release(vertices)
	indices, err := vulkan.NewIndexBuffer(data, quadIndices).Build()
	if err != nil {
		log.Error("index buffer", "err", err)
		return
	}
	enc.Release(indices)

	pass, err := vulkan.NewRenderPass(frame).
		ClearColor(gputypes.Color{A: 1}).
		Build()
	if err != nil {
		log.Error("render pass", "err", err)
		return
	}
	pass.SetPipeline(data.Pipelines().At(0))
	pass.SetVertexBuffer(0, vertices)
	pass.SetIndexBuffer(indices)
	pass.DrawIndexed(uint32(indices.Count()), 1, 0, 0, 0)
	if err := pass.End(); err != nil {
		log.Error("render pass", "err", err)
	}
}

// project rotates vs about the y axis and returns them in normalized device
// coordinates, as seen from eye.
func project(vs []coloredVertex, angle, aspect float32) []coloredVertex {
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	mvp := vulkan.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10).
		Mul4(view).
		Mul4(mgl32.HomogRotate3DY(angle))

	out := make([]coloredVertex, len(vs))
	for i, v := range vs {
		clip := mvp.Mul4x1(mgl32.Vec3(v.Position).Vec4(1))
		out[i] = coloredVertex{Position: clip.Vec3().Mul(1 / clip.W()), Color: v.Color}
	}
	return out
}
