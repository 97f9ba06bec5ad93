package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/ghodss/yaml"
	"github.com/schollz/progressbar/v3"
	"github.com/soypat/cylmesh"
	"github.com/soypat/cylmesh/internal/config"
	"github.com/soypat/cylmesh/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchFile is the document read by the batch command.
//
//	jobs:
//	  - name: wheel
//	    segments: 32
//	    radius: 2
//	    width: 0.4
//	  - output: spacer.stl
//	    segments: 6
type BatchFile struct {
	Jobs []BatchJob `json:"jobs"`
}

// BatchJob describes one mesh. Absent shape parameters take the configured
// defaults. Output defaults to Name with the extension of Format. Without a
// Format the configured format is used, else the one matching the Output
// extension.
type BatchJob struct {
	Name     string   `json:"name"`
	Segments *int     `json:"segments"`
	Radius   *float64 `json:"radius"`
	Width    *float64 `json:"width"`
	Output   string   `json:"output"`
	Format   string   `json:"format"`
}

type batchTask struct {
	shape  cylmesh.ShapeParameters
	output string
	format string
}

// ParseBatch decodes a batch file.
func ParseBatch(data []byte) (BatchFile, error) {
	var bf BatchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return bf, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(bf.Jobs) == 0 {
		return bf, errors.New("batch file has no jobs")
	}
	return bf, nil
}

// resolve validates every job and fills in defaults. No job runs unless all
// of them are valid.
func (bf BatchFile) resolve(cfg config.Config) ([]batchTask, error) {
	tasks := make([]batchTask, len(bf.Jobs))
	seen := make(map[string]int, len(bf.Jobs))
	for i, job := range bf.Jobs {
		d := cfg.Defaults
		if job.Segments != nil {
			d.Segments = *job.Segments
		}
		if job.Radius != nil {
			d.Radius = *job.Radius
		}
		if job.Width != nil {
			d.Width = *job.Width
		}
		s, err := cylmesh.NewShape(d.Segments, d.Radius, d.Width)
		if err != nil {
			return nil, fmt.Errorf("job %d %q: %w", i+1, job.Name, err)
		}
		format := job.Format
		if format == "" {
			format = cfg.Format
		}
		format = config.OutputFormat(job.Output, format)
		if format != config.FormatOBJ && format != config.FormatSTL {
			return nil, fmt.Errorf("job %d %q: unknown format %q", i+1, job.Name, format)
		}
		output := job.Output
		if output == "" {
			if job.Name == "" {
				return nil, fmt.Errorf("job %d: needs a name or an output path", i+1)
			}
			output = job.Name + "." + format
		}
		if output == config.StdoutPath {
			return nil, fmt.Errorf("job %d %q: batch output cannot be stdout", i+1, job.Name)
		}
		if prev, ok := seen[output]; ok {
			return nil, fmt.Errorf("jobs %d and %d both write %s", prev, i+1, output)
		}
		seen[output] = i + 1
		tasks[i] = batchTask{shape: s, output: output, format: format}
	}
	return tasks, nil
}

func (a *app) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Generate every mesh listed in a YAML batch file",
		Long: `Generates the meshes listed in a YAML batch file concurrently.
Each job writes its own output file. All jobs are validated before any
file is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(a.fs, args[0])
			if err != nil {
				return err
			}
			bf, err := ParseBatch(data)
			if err != nil {
				return err
			}
			tasks, err := bf.resolve(a.cfg)
			if err != nil {
				return err
			}
			workers, _ := cmd.Flags().GetInt("jobs")
			quiet, _ := cmd.Flags().GetBool("quiet")
			return a.runBatch(context.Background(), tasks, workers, quiet)
		},
	}
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "number of meshes generated concurrently")
	cmd.Flags().BoolP("quiet", "q", false, "do not show a progress bar")
	return cmd
}

func (a *app) runBatch(ctx context.Context, tasks []batchTask, workers int, quiet bool) error {
	if workers < 1 {
		logger.Warn("non-positive job count, generating one mesh at a time", zap.Int("jobs", workers))
		workers = 1
	}
	var progress io.Writer = io.Discard
	if !quiet {
		progress = a.stderr
	}
	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("generating"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(progress) }),
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.writeMesh(task.shape, task.output, task.format); err != nil {
				return err
			}
			return bar.Add(1)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("batch complete", zap.Int("meshes", len(tasks)))
	return nil
}
