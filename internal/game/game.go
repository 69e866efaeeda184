package game

import (
	"context"
	"fmt"
	"time"

	"raycar/internal/bridge"
	"raycar/internal/camera"
	"raycar/internal/components"
	"raycar/internal/config"
	"raycar/internal/engine"
	"raycar/internal/physics"
	"raycar/internal/sim"
	"raycar/internal/vehicle"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
)

type Game struct {
	Config   *config.Config
	Sim      *sim.Simulation
	Scene    *engine.Scene
	Camera   *camera.ChaseCamera
	Bindings Bindings
	Logger   zerolog.Logger

	DebugMode bool
	Paused    bool

	lastErr error

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

func New(cfg *config.Config, s *sim.Simulation, logger zerolog.Logger) *Game {
	return &Game{
		Config:   cfg,
		Sim:      s,
		Scene:    engine.NewScene("track"),
		Camera:   camera.New(9, 3.5),
		Bindings: DefaultBindings(),
		Logger:   logger,
	}
}

func (g *Game) Run() {
	w := g.Config.Window
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(w.TargetFPS))

	initHUDStyle()

	// Meshes need the GL context.
	g.buildScene()
	defer g.Scene.Unload()

	g.Logger.Info().Int("width", w.Width).Int("height", w.Height).Msg("window open")
	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

const (
	tagObstacle = "obstacle"
	tagWheel    = "wheel"
)

func (g *Game) buildScene() {
	if err := g.assembleScene(); err != nil {
		g.Logger.Error().Err(err).Msg("initial sync failed")
	}
	g.Scene.Start()
}

// assembleScene creates the render objects and binds them to the bridge.
// It needs no GL context; meshes are generated by Scene.Start.
func (g *Game) assembleScene() error {
	v := g.Sim.Vehicle
	chassisBody := v.Chassis()

	ground := engine.NewGameObject("Ground")
	ground.AddComponent(components.NewMeshRenderer(components.MeshPlane, rl.NewColor(70, 90, 70, 255), rl.Vector3{X: 400, Z: 400}))
	g.Scene.AddGameObject(ground)

	for _, b := range g.Sim.World.Bodies() {
		if b == chassisBody || b == g.Sim.Ground || b.Type != physics.Static || b.Shape.Kind != physics.ShapeBox {
			continue
		}
		obj := engine.NewGameObject(b.Name)
		obj.Tags = []string{tagObstacle}
		bridge.SyncChassis(b, &obj.Transform)
		obj.AddComponent(components.NewMeshRenderer(components.MeshCube, rl.Gray, rl.Vector3Scale(b.Shape.HalfExtents, 2)))
		g.Scene.AddGameObject(obj)
	}

	half := chassisBody.Shape.HalfExtents
	chassis := engine.NewGameObject("Chassis")
	chassis.AddComponent(components.NewMeshRenderer(components.MeshCube, rl.Maroon, rl.Vector3Scale(half, 2)))
	g.Scene.AddGameObject(chassis)

	// Rides on the chassis pose; the bridge only writes the root.
	cabin := engine.NewGameObject("Cabin")
	cabin.Transform.Position = rl.Vector3{Y: half.Y * 1.6, Z: -half.Z * 0.2}
	cabin.AddComponent(components.NewMeshRenderer(components.MeshCube, rl.NewColor(60, 70, 90, 255),
		rl.Vector3{X: half.X * 1.6, Y: half.Y * 1.2, Z: half.Z}))
	chassis.AddChild(cabin)
	g.Scene.AddGameObject(cabin)

	for i := 0; i < v.NumWheels(); i++ {
		cfg, _ := v.WheelConfig(i)
		wheel := engine.NewGameObject(fmt.Sprintf("Wheel_%d", i))
		wheel.Tags = []string{tagWheel}
		wheel.AddComponent(components.NewMeshRenderer(components.MeshWheel, rl.DarkGray, rl.Vector3{X: cfg.Radius, Y: cfg.Radius * 0.6}))
		g.Scene.AddGameObject(wheel)
	}

	g.Sim.Bridge.Chassis = g.Scene.FindByName("Chassis")
	g.Sim.Bridge.Wheels = g.Scene.FindByTag(tagWheel)
	g.applyDebugView()
	return g.Sim.Bridge.Sync()
}

// applyDebugView draws the car in wireframe while the debug view is on so
// the suspension rays stay visible.
func (g *Game) applyDebugView() {
	objs := append(g.Scene.FindByTag(tagWheel), g.Scene.FindByName("Chassis"), g.Scene.FindByName("Cabin"))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if r := engine.GetComponent[*components.MeshRenderer](obj); r != nil {
			r.Wireframe = g.DebugMode
		}
	}
}

func (g *Game) Update() {
	updateStart := time.Now()
	deltaTime := rl.GetFrameTime()

	if rl.IsKeyPressed(rl.KeyF1) {
		g.DebugMode = !g.DebugMode
		g.applyDebugView()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.Paused = !g.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.Sim.Reset(); err != nil {
			g.Logger.Error().Err(err).Msg("reset failed")
		}
		g.lastErr = nil
		g.Camera.ResetOrbit()
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		g.Camera.Orbit(d.X, d.Y)
	}

	g.Bindings.Poll(g.Sim.Intents, rl.IsKeyDown)

	if !g.Paused && g.lastErr == nil {
		if _, err := g.Sim.Frame(context.Background(), deltaTime); err != nil {
			// Frame already logged degenerate steps; hold until reset.
			g.lastErr = err
			g.Logger.Warn().Err(err).Msg("simulation halted, press R to reset")
		}
	}

	g.Scene.Update(deltaTime)
	chassis := g.Sim.Vehicle.Chassis()
	g.Camera.Follow(chassis.Position, chassis.Rotation, deltaTime)

	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

func (g *Game) Draw() {
	camera := g.Camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	drawStart := time.Now()
	rl.BeginMode3D(camera)
	g.Scene.Draw()
	rl.DrawGrid(100, 4)
	if g.DebugMode {
		g.drawWheelDebug()
	}
	rl.EndMode3D()
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	g.DrawUI()
	rl.EndDrawing()
}

// drawWheelDebug shows each suspension ray and the ground normal it hit.
func (g *Game) drawWheelDebug() {
	v := g.Sim.Vehicle
	chassis := v.Chassis()
	for i, st := range v.WheelStates() {
		cfg, _ := v.WheelConfig(i)
		from := chassis.PointToWorld(cfg.ChassisConnectionPointLocal)
		if !st.InContact {
			dir := chassis.VectorToWorld(cfg.DirectionLocal)
			rl.DrawLine3D(from, rl.Vector3Add(from, rl.Vector3Scale(dir, cfg.SuspensionRestLength+cfg.Radius)), rl.Red)
			continue
		}
		color := rl.Green
		if st.Sliding {
			color = rl.Orange
		}
		rl.DrawLine3D(from, st.ContactPoint, color)
		rl.DrawLine3D(st.ContactPoint, rl.Vector3Add(st.ContactPoint, st.ContactNormal), rl.SkyBlue)
		rl.DrawSphere(st.ContactPoint, 0.05, color)
	}
}

func (g *Game) DrawUI() {
	rl.DrawText("WASD / arrows to drive, Space to brake, R to reset", 10, 10, 20, rl.LightGray)
	rl.DrawText("F1 debug view, P pause, right mouse to orbit", 10, 35, 20, rl.LightGray)
	rl.DrawFPS(10, 60)

	v := g.Sim.Vehicle
	rl.DrawText(fmt.Sprintf("%.0f km/h", v.CurrentSpeed()), 10, 90, 30, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("Wheels on ground: %d/%d", v.WheelsInContact(), v.NumWheels()), 10, 125, 16, rl.RayWhite)
	if g.Paused {
		rl.DrawText("PAUSED", 10, 145, 20, rl.Yellow)
	}
	if g.lastErr != nil {
		rl.DrawText(g.lastErr.Error(), 10, 170, 16, rl.Red)
	}

	g.drawTuningPanel()

	if g.DebugMode {
		g.drawWheelTable(v)
		rl.DrawText(fmt.Sprintf("Update: %.2f ms", g.updateMs), 10, 300, 16, rl.Green)
		rl.DrawText(fmt.Sprintf("Draw:   %.2f ms", g.drawMs), 10, 320, 16, rl.Green)
		rl.DrawText(fmt.Sprintf("Step:   %d (%.1f s)", g.Sim.World.StepCount(), g.Sim.World.Time()), 10, 340, 16, rl.Green)
	}
}

func (g *Game) drawTuningPanel() {
	const (
		panelW = 260
		labelW = 90
		rowH   = 22
	)
	x := float32(rl.GetScreenWidth() - panelW - 10)
	y := float32(10)
	gui.Panel(rl.Rectangle{X: x, Y: y, Width: panelW, Height: 4*rowH + 36}, "Tuning")
	y += 30

	m := &g.Sim.Mapper
	slider := func(label string, value, min, max float32) float32 {
		rl.DrawText(label, int32(x)+8, int32(y)+4, 14, colorTextMuted)
		bounds := rl.Rectangle{X: x + labelW, Y: y, Width: panelW - labelW - 50, Height: rowH - 4}
		value = gui.Slider(bounds, "", fmt.Sprintf("%.2f", value), value, min, max)
		y += rowH
		return value
	}
	m.MaxEngineForce = slider("Engine", m.MaxEngineForce, 0, 4000)
	m.MaxBrake = slider("Brake", m.MaxBrake, 0, 4000)
	m.MaxSteering = slider("Steering", m.MaxSteering, 0, 0.8)

	debug := gui.CheckBox(rl.Rectangle{X: x + 8, Y: y, Width: rowH - 4, Height: rowH - 4}, "Debug view", g.DebugMode)
	if debug != g.DebugMode {
		g.DebugMode = debug
		g.applyDebugView()
	}
}

func (g *Game) drawWheelTable(v *vehicle.RaycastVehicle) {
	y := int32(195)
	rl.DrawText("wheel  susp   force    skid  spin", 10, y, 16, colorTextMuted)
	for i, st := range v.WheelStates() {
		y += 20
		rl.DrawText(fmt.Sprintf("%-5d  %.2f  %7.0f  %.2f  %5.2f",
			i, st.SuspensionLength, st.SuspensionForce, st.SkidInfo, st.DeltaRotation), 10, y, 16, rl.RayWhite)
	}
}
