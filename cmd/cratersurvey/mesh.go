package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crater-survey/internal/mesh"
	"crater-survey/internal/pgm"
)

// NewMeshCmd creates the mesh command.
func NewMeshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Convert a heightmap tile to a 3D terrain mesh",
		Long: `Mesh reads a PGM heightmap tile, downsamples it, and writes a
triangulated terrain surface in Wavefront OBJ format.

Example:
  cratersurvey mesh --image lat-30_lon000.pgm --out terrain.obj --step 8`,
		RunE: runMeshCmd,
	}

	cmd.Flags().String("image", "", "PGM heightmap to convert (required)")
	cmd.Flags().String("out", "terrain.obj", "Output OBJ path")
	cmd.Flags().Int("step", mesh.DefaultOptions().Step, "Downsampling factor")
	cmd.Flags().Float64("zscale", mesh.DefaultOptions().ZScale, "Height scale per intensity step")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runMeshCmd(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	imagePath, _ := cmd.Flags().GetString("image")
	outPath, _ := cmd.Flags().GetString("out")

	img, err := pgm.Open(imagePath)
	if err != nil {
		return err
	}
	tile, err := img.ReadAll()
	if err != nil {
		return err
	}

	opts := mesh.DefaultOptions()
	opts.Step, _ = cmd.Flags().GetInt("step")
	opts.ZScale, _ = cmd.Flags().GetFloat64("zscale")

	m, err := mesh.FromHeightmap(tile, opts)
	if err != nil {
		return err
	}
	if err := m.WriteOBJFile(outPath); err != nil {
		return err
	}

	logger.Info("wrote terrain mesh", "path", outPath,
		"vertices", len(m.Vertices), "faces", len(m.Faces))
	fmt.Printf("Wrote %s: %d vertices, %d faces (%dx%d grid)\n",
		outPath, len(m.Vertices), len(m.Faces), m.Columns, m.Rows)
	return nil
}
