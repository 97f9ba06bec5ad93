package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/soypat/cylmesh"
	"github.com/spf13/cobra"
)

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [segments] [radius] [width]",
		Short: "Print counts, bounds, area and volume of a generated mesh",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.cfg.Shape(args)
			if err != nil {
				return err
			}
			m := cylmesh.Generate(s)
			if err := m.Validate(); err != nil {
				return fmt.Errorf("generated mesh is malformed: %w", err)
			}
			st := m.Stats()
			w := tabwriter.NewWriter(a.stdout, 0, 4, 1, ' ', 0)
			fmt.Fprintf(w, "segments\t%d\n", s.Segments)
			fmt.Fprintf(w, "radius\t%g\n", s.Radius)
			fmt.Fprintf(w, "width\t%g\n", s.Width)
			fmt.Fprintf(w, "vertices\t%d\n", st.Vertices)
			fmt.Fprintf(w, "normals\t%d\n", st.Normals)
			fmt.Fprintf(w, "faces\t%d\n", st.Faces)
			fmt.Fprintf(w, "bounds\t(%.4f, %.4f, %.4f) (%.4f, %.4f, %.4f)\n",
				st.Bounds.Min.X, st.Bounds.Min.Y, st.Bounds.Min.Z,
				st.Bounds.Max.X, st.Bounds.Max.Y, st.Bounds.Max.Z)
			fmt.Fprintf(w, "area\t%.4f\n", st.Area)
			fmt.Fprintf(w, "volume\t%.4f\n", st.Volume)
			return w.Flush()
		},
	}
}
