package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/termesh/internal/config"
	"github.com/taigrr/termesh/internal/logger"
	"github.com/taigrr/termesh/pkg/math3d"
	"github.com/taigrr/termesh/pkg/models"
	"github.com/taigrr/termesh/pkg/render"
)

const (
	// Frequency 4.0 = moderate speed, damping 1.0 = critically damped
	// (impulses settle without overshoot).
	springFrequency = 4.0
	springDamping   = 1.0

	torqueStrength = 3.0

	// Auto-spin rotation added per frame while spin is enabled.
	spinPitchRate = 0.01
	spinYawRate   = 0.015

	// Starting pose, tilted so two cube faces are visible immediately.
	initialPitch = 0.3
	initialYaw   = 0.3

	minCameraZ = 1.0
	maxCameraZ = 20.0
)

// SpringAxis smooths the impulses on one rotation axis into a velocity
// that decays toward rest.
type SpringAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewSpringAxis creates an axis with a harmonica spring for smooth velocity decay.
func NewSpringAxis(fps int) SpringAxis {
	return SpringAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
	}
}

// Update decays the velocity toward 0.
func (a *SpringAxis) Update() {
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationSprings holds the per-axis springs whose velocities feed the
// rotation state as per-frame deltas.
type RotationSprings struct {
	Pitch, Yaw, Roll SpringAxis
	fps              int
}

func NewRotationSprings(fps int) *RotationSprings {
	return &RotationSprings{
		Pitch: NewSpringAxis(fps),
		Yaw:   NewSpringAxis(fps),
		Roll:  NewSpringAxis(fps),
		fps:   fps,
	}
}

func (r *RotationSprings) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationSprings) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

// Velocities returns the current per-frame rotation deltas.
func (r *RotationSprings) Velocities() (pitch, yaw, roll float64) {
	return r.Pitch.Velocity, r.Yaw.Velocity, r.Roll.Velocity
}

func (r *RotationSprings) Reset() {
	r.Pitch = NewSpringAxis(r.fps)
	r.Yaw = NewSpringAxis(r.fps)
	r.Roll = NewSpringAxis(r.fps)
}

// ViewState holds all view-related settings (UI state, not library code)
type ViewState struct {
	Spin      bool // auto-spin enabled
	Wireframe bool
	ShowHUD   bool
}

// NewViewState seeds the view state from the merged config.
func NewViewState(cfg *config.Config) *ViewState {
	return &ViewState{
		Spin:      cfg.Viewer.Spin,
		Wireframe: cfg.Viewer.Wireframe,
		ShowHUD:   true,
	}
}

func runViewer(cfg *config.Config, mesh *models.Mesh) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	renderer := render.NewRenderer(width, height)
	camera := render.NewCamera(width, height)
	if cfg.Viewer.Projection == "orthographic" {
		camera.Mode = render.ProjectionOrthographic
	}
	cameraZ := camera.Position.Z

	rot := math3d.NewRotationState(initialPitch, initialYaw, 0)
	springs := NewRotationSprings(cfg.Viewer.FPS)
	view := NewViewState(cfg)
	hud := NewHUD(mesh.Name, mesh.TriangleCount())

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Input state
	inputTorque := struct{ pitch, yaw, roll float64 }{}

	// Event handler
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				renderer = render.NewRenderer(width, height)
				camera.Aspect = float64(width) / float64(height)
				logger.Debug("terminal resized", zap.Int("width", width), zap.Int("height", height))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("q"), ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("r"):
					rot = math3d.NewRotationState(initialPitch, initialYaw, 0)
					springs.Reset()
					cameraZ = 5.0
					camera.Position = math3d.V3(0, 0, cameraZ)
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("z"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					view.Spin = !view.Spin
				case ev.MatchString("o"):
					if camera.Mode == render.ProjectionPerspective {
						camera.Mode = render.ProjectionOrthographic
					} else {
						camera.Mode = render.ProjectionPerspective
					}
				case ev.MatchString("x"):
					view.Wireframe = !view.Wireframe
				case ev.MatchString("+", "="):
					cameraZ = math.Max(minCameraZ, cameraZ-0.5)
					camera.Position = math3d.V3(0, 0, cameraZ)
				case ev.MatchString("-", "_"):
					cameraZ = math.Min(maxCameraZ, cameraZ+0.5)
					camera.Position = math3d.V3(0, 0, cameraZ)
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					view.ShowHUD = !view.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("z"), ev.MatchString("e"):
					inputTorque.roll = 0
				}
			}
		}
	}()

	// Main loop
	targetDuration := time.Second / time.Duration(cfg.Viewer.FPS)
	lastFrame := time.Now()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			logger.Debug("viewer shut down")
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		// Apply input torque and decay it (key release events unreliable)
		springs.ApplyImpulse(
			inputTorque.pitch*dt,
			inputTorque.yaw*dt,
			inputTorque.roll*dt,
		)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9

		// Update springs (harmonica handles timing internally)
		springs.Update()

		dPitch, dYaw, dRoll := springs.Velocities()
		if view.Spin {
			dPitch += spinPitchRate
			dYaw += spinYawRate
		}
		rot.Rotate(dPitch, dYaw, dRoll)

		// Render
		renderer.Clear()
		if view.Wireframe {
			renderer.RenderMeshWireframe(mesh, rot.Matrix(), camera)
		} else {
			renderer.RenderMesh(mesh, rot.Matrix(), camera)
		}

		// Display
		renderer.Framebuffer().Draw(term, term.Bounds())
		hud.UpdateFPS()
		hud.Render(term, width, height, view, camera.Mode.String())
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
