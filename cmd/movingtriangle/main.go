// Command movingtriangle bounces a triangle around the window without vsync.
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
)

const triangleSize = 0.3

type posVertex struct {
	Position [2]float32
}

type state struct {
	pos    mgl32.Vec2
	vel    mgl32.Vec2
	xScale float32
}

func main() {
	configPath := flag.String("config", "cmd/config.toml", "TOML settings file")
	shaders := flag.String("shaders", "cmd/shaders", "directory holding the WGSL shaders")
	watch := flag.Bool("watch", false, "rebuild the pipeline when the shader changes")
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
	cfg.Title = "moving triangle"
	shaderPath := filepath.Join(*shaders, "shader_color_from_pos.wgsl")
	if *watch {
		cfg.WatchShaders = append(cfg.WatchShaders, shaderPath)
	}

	app := desktop.NewApp(state{
		pos:    mgl32.Vec2{0.5, 0},
		vel:    mgl32.Vec2{0.707, 0.707},
		xScale: 9.0 / 16.0,
	}).
		Config(cfg).
		Logger(log).
		PresentMode(noboiler.PresentModeImmediate).
		Init(func(data *noboiler.AppData, _ *state, pipelines *noboiler.PipelineSet) error {
			p, err := vulkan.PipelineFromShaderFile(shaderPath, data).
				AddVertexBuffer(noboiler.LayoutOf[posVertex]()).
				Build()
			if err != nil {
				return err
			}
			pipelines.Push(p)
			return nil
		}).
		Input(input).
		Update(update).
		Resize(resize).
		Render(render)
	if err := app.Run(); err != nil {
		log.Error("moving triangle", "err", err)
		os.Exit(1)
	}
}

func input(data *noboiler.AppData, _ *state, ev noboiler.Event) bool {
	if k, ok := ev.(noboiler.KeyInput); ok && k.Key == noboiler.KeyEscape && k.Action == noboiler.Press {
		data.Exit()
		return true
	}
	return false
}

func update(data *noboiler.AppData, s *state) {
	step(s, float32(data.Delta()))
}

// step reflects the velocity off the window edges and advances by dt seconds.
func step(s *state, dt float32) {
	if mgl32.Abs(s.pos.X()) > 1/s.xScale-triangleSize {
		s.vel[0] = -s.vel[0]
	}
	if mgl32.Abs(s.pos.Y()) > 1-triangleSize {
		s.vel[1] = -s.vel[1]
	}
	s.pos = s.pos.Add(s.vel.Mul(dt))
}

func resize(_ *noboiler.AppData, s *state, width, height uint32) {
	s.xScale = float32(height) / float32(width)
}

func render(data *noboiler.AppData, s *state, frame *noboiler.Frame) {
	log := data.Logger()
	vertices, err := vulkan.NewVertexBuffer(data, triangle(s)).Build()
	if err != nil {
		log.Error("vertex buffer", "err", err)
		return
	}
	frame.Encoder.(*vulkan.Encoder).Release(vertices)

	pass, err := vulkan.NewRenderPass(frame).Build()
	if err != nil {
		log.Error("render pass", "err", err)
		return
	}
	pass.SetPipeline(data.Pipelines().At(0))
	pass.SetVertexBuffer(0, vertices)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		log.Error("render pass", "err", err)
	}
}

func triangle(s *state) []posVertex {
	x, y := s.pos.X(), s.pos.Y()
	return []posVertex{
		{Position: [2]float32{x * s.xScale, triangleSize + y}},
		{Position: [2]float32{(x - triangleSize) * s.xScale, y - triangleSize}},
		{Position: [2]float32{(x + triangleSize) * s.xScale, y - triangleSize}},
	}
}
