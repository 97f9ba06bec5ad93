// Package cli implements the cylmesh command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"github.com/soypat/cylmesh"
	"github.com/soypat/cylmesh/internal/config"
	"github.com/soypat/cylmesh/internal/logger"
	"github.com/soypat/cylmesh/render"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes returned by Execute.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidShape = 2
)

type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	v      *viper.Viper
	cfg    config.Config
	prof   interface{ Stop() }
}

// Execute runs the cylmesh command with the process arguments and returns
// the exit code.
func Execute() int {
	return run(afero.NewOsFs(), os.Stdout, os.Stderr, os.Args[1:])
}

func run(fs afero.Fs, stdout, stderr io.Writer, args []string) int {
	// Console logging until the configured level is known.
	logger.InitWithFileConfig("info", logger.FileConfig{}, stderr)
	a := &app{fs: fs, stdout: stdout, stderr: stderr, v: config.New()}
	a.v.SetFs(fs)
	defer logger.Sync()
	defer a.stopProfile()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	logger.Error("cylmesh failed", zap.Error(err))
	if errors.Is(err, cylmesh.ErrInvalidShape) {
		return ExitInvalidShape
	}
	return ExitFailure
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cylmesh [segments] [radius] [width]",
		Short: "Generate a triangulated capped cylinder mesh",
		Long: `Generates the surface of a capped cylinder as a triangle mesh with
flat-shaded normals and writes it as a Wavefront OBJ or binary STL file.

Segments must be between 3 and 360, radius and width must be positive.
Absent or non-numeric arguments use the defaults 8, 1 and 0.5.`,
		Args:              cobra.MaximumNArgs(3),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.cfg.Shape(args)
			if err != nil {
				return err
			}
			return a.writeMesh(s, a.cfg.Output, config.OutputFormat(a.cfg.Output, a.cfg.Format))
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is ./.cylmesh.yaml or $HOME/.cylmesh.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-file", "", "also write logs to this file, rotated by size")
	pf.String("profile", "", "write a CPU profile to this directory")
	pf.String("header", config.Default().Header, "comment written at the top of OBJ output")
	f := root.Flags()
	f.StringP("output", "o", config.Default().Output, `output file, "-" for stdout`)
	f.StringP("format", "f", "", "output format: obj or stl (default from the output extension, else obj)")

	root.AddCommand(a.batchCommand(), a.statsCommand())
	return root
}

// setup loads configuration and initializes logging for every command.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.v, file)
	if err != nil {
		return err
	}
	a.cfg = cfg
	fileCfg := logger.FileConfig{}
	if cfg.Log.File != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Log.File)
	}
	if err := logger.InitWithFileConfig(cfg.Log.Level, fileCfg, a.stderr); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if used := config.ConfigFileUsed(a.v); used != "" {
		logger.Debug("loaded config", zap.String("file", used))
	}
	if dir, _ := cmd.Flags().GetString("profile"); dir != "" {
		a.prof = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	}
	return nil
}

func (a *app) stopProfile() {
	if a.prof != nil {
		a.prof.Stop()
		a.prof = nil
	}
}

// writeMesh generates the mesh for s and writes it to path in format.
func (a *app) writeMesh(s cylmesh.ShapeParameters, path, format string) error {
	m := cylmesh.Generate(s)
	logger.Debug("generated mesh",
		zap.Int("segments", s.Segments),
		zap.Float64("radius", s.Radius),
		zap.Float64("width", s.Width),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("normals", len(m.Normals)),
		zap.Int("faces", len(m.Faces)),
	)
	var err error
	switch {
	case path == config.StdoutPath && format == config.FormatSTL:
		var model []render.Triangle3
		model, err = render.RenderAll(render.NewMeshRenderer(m))
		if err == nil {
			err = render.WriteSTL(a.stdout, model)
		}
	case path == config.StdoutPath:
		err = render.WriteOBJ(a.stdout, m, render.WithHeader(a.cfg.Header))
	case format == config.FormatSTL:
		err = render.CreateSTL(a.fs, path, render.NewMeshRenderer(m))
	default:
		err = render.CreateOBJ(a.fs, path, m, render.WithHeader(a.cfg.Header))
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if path != config.StdoutPath {
		logger.Sugar.Infof("%s file saved as %s", formatName(format), path)
	}
	return nil
}

func formatName(format string) string {
	if format == config.FormatSTL {
		return "STL"
	}
	return "OBJ"
}
