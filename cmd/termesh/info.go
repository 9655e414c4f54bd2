package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/termesh/pkg/models"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.stl|model.glb>",
		Short: "Display model information",
		Long:  "Display information about a model file: detected format, triangle count, and bounding box.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

func runInfo(modelPath string) error {
	fi, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	format, err := detectFormat(modelPath)
	if err != nil {
		return err
	}

	mesh, err := loadMesh(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	min, max := mesh.Bounds()
	size := mesh.Size()
	center := mesh.Center()

	fmt.Printf("File:       %s\n", filepath.Base(modelPath))
	fmt.Printf("Format:     %s\n", format)
	fmt.Printf("Size:       %.2f KB\n", float64(fi.Size())/1024)
	fmt.Println()
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", min.X, min.Y, min.Z)
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", max.X, max.Y, max.Z)
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)

	return nil
}

// detectFormat names the on-disk format. STL files are probed for their
// dialect; glTF files are reported by extension.
func detectFormat(modelPath string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(modelPath)); ext {
	case ".stl":
		data, err := os.ReadFile(modelPath)
		if err != nil {
			return "", fmt.Errorf("cannot read file: %w", err)
		}
		return fmt.Sprintf("STL (%s)", models.STLFormat(data)), nil
	case ".glb", ".gltf":
		return strings.ToUpper(strings.TrimPrefix(ext, ".")), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use .stl, .glb, or .gltf)", ext)
	}
}
