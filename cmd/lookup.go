package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsphweid/chordex/annotation"
	"github.com/jsphweid/chordex/sequence"
)

func init() {
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup FILE.csv POSITION...",
	Short: "Looks up the chord at positions",
	Long:  `Prints the chord annotated at each position (in measures) of a chord annotation CSV.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var positions []float64
		for _, arg := range args[1:] {
			p, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("bad position %q: %w", arg, err)
			}
			positions = append(positions, p)
		}

		seq, err := loadSequence(args[0])
		if err != nil {
			return err
		}
		return lookup(cmd.OutOrStdout(), seq, positions)
	},
}

// loadSequence reads an annotation CSV. A schema mismatch is only logged.
func loadSequence(path string) (*sequence.ChordSequence, error) {
	cols, err := annotation.ReadFile(path)
	var schemaErr *annotation.SchemaError
	if errors.As(err, &schemaErr) {
		slog.Warn("annotation schema mismatch", "path", path, "expected", schemaErr.Expected, "got", schemaErr.Got)
	} else if err != nil {
		return nil, err
	}

	seq, err := cols.Sequence()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	slog.Debug("loaded chord sequence", "path", path, "intervals", seq.Len())
	return seq, nil
}

func lookup(w io.Writer, seq *sequence.ChordSequence, positions []float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tCHORD\tROOT\tSTEPS\tBASS")
	for _, p := range positions {
		c, err := seq.ChordAt(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\n", p, c.Notation(), c.RootLabel(), c.Steps(), c.Bass())
	}
	return tw.Flush()
}
