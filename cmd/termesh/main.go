// termesh - Terminal STL Viewer
// Render STL and glTF models as spinning shaded ASCII art in your terminal.
//
// Controls:
//
//	W/S         - Pitch up/down (arrow keys work too)
//	A/D         - Yaw left/right
//	Z/E         - Roll left/right
//	Space       - Toggle auto-spin
//	R           - Reset view
//	O           - Toggle projection (perspective/orthographic)
//	X           - Toggle wireframe
//	+/-         - Zoom in/out
//	?           - Toggle HUD overlay
//	Q/Esc       - Quit
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/termesh/internal/config"
	"github.com/taigrr/termesh/internal/logger"
	"github.com/taigrr/termesh/pkg/math3d"
	"github.com/taigrr/termesh/pkg/models"
)

var (
	flagFPS       int
	flagOrtho     bool
	flagWireframe bool
	flagSpin      bool
	flagNoSpin    bool
	flagConfig    string
	flagLogFile   string
	flagLogLevel  string
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "termesh [model.stl|model.glb]",
		Short: "Terminal STL viewer",
		Long: `termesh - Terminal STL Viewer

Render STL and glTF models as spinning shaded ASCII art in your
terminal. Run without an argument to view a built-in cube.

Controls:
  W/S/A/D     - Pitch and yaw (arrow keys work too)
  Z/E         - Roll left/right
  Space       - Toggle auto-spin
  R           - Reset view
  O           - Toggle projection (perspective/orthographic)
  X           - Toggle wireframe
  +/-         - Zoom in/out
  ?           - Toggle HUD overlay
  Q/Esc       - Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := ""
			if len(args) > 0 {
				modelPath = args[0]
			}
			return runRoot(cmd, modelPath)
		},
	}

	cmd.Flags().IntVar(&flagFPS, "fps", 30, "Target FPS")
	cmd.Flags().BoolVar(&flagOrtho, "ortho", false, "Start with the orthographic projection")
	cmd.Flags().BoolVar(&flagWireframe, "wireframe", false, "Start in wireframe mode")
	cmd.Flags().BoolVar(&flagSpin, "spin", true, "Auto-spin the model")
	cmd.Flags().BoolVar(&flagNoSpin, "no-spin", false, "Start with auto-spin disabled")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a config file")
	cmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func runRoot(cmd *cobra.Command, modelPath string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	mesh, err := loadMesh(modelPath)
	if err != nil {
		logger.Error("model load failed", zap.String("path", modelPath), zap.Error(err))
		return err
	}
	if modelPath != "" {
		normalizeMesh(mesh)
	}
	logger.Info("model loaded",
		zap.String("name", mesh.Name),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("fps", cfg.Viewer.FPS),
		zap.String("projection", cfg.Viewer.Projection))

	return runViewer(cfg, mesh)
}

// applyFlags merges explicitly set command-line flags over the loaded
// config, completing the defaults < file < flags precedence.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("fps") {
		cfg.Viewer.FPS = flagFPS
	}
	if fl.Changed("ortho") && flagOrtho {
		cfg.Viewer.Projection = "orthographic"
	}
	if fl.Changed("wireframe") {
		cfg.Viewer.Wireframe = flagWireframe
	}
	if fl.Changed("spin") {
		cfg.Viewer.Spin = flagSpin
	}
	if fl.Changed("no-spin") && flagNoSpin {
		cfg.Viewer.Spin = false
	}
	if fl.Changed("log-file") {
		cfg.Logging.File = flagLogFile
	}
	if fl.Changed("log-level") {
		cfg.Logging.Level = flagLogLevel
	}
}

func validateConfig(cfg *config.Config) error {
	if cfg.Viewer.FPS < 1 {
		return fmt.Errorf("fps must be at least 1, got %d", cfg.Viewer.FPS)
	}
	switch cfg.Viewer.Projection {
	case "perspective", "orthographic":
	default:
		return fmt.Errorf("unknown projection %q (want perspective or orthographic)", cfg.Viewer.Projection)
	}
	return nil
}

// loadMesh loads the model at path, dispatching on the file extension.
// An empty path yields the built-in cube.
func loadMesh(path string) (*models.Mesh, error) {
	if path == "" {
		return models.Cube(2.0), nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return models.LoadSTL(path)
	case ".glb", ".gltf":
		return models.LoadGLB(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .stl, .glb, or .gltf)", ext)
	}
}

// normalizeMesh centers the mesh at the origin and scales it so the
// largest dimension is 2.0, matching the built-in cube.
func normalizeMesh(mesh *models.Mesh) {
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		mesh.Transform(math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(center.Scale(-1))))
	}
}
