package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/jsphweid/chordex/chord"
	"github.com/jsphweid/chordex/model"
)

var parsePitches []float64

func init() {
	parseCmd.Flags().Float64SliceVarP(&parsePitches, "pitch", "p", nil, "MIDI pitches to test against each chord")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse NOTATION...",
	Short: "Parses chord symbols",
	Long:  `Parses chord symbols and prints their root, steps and bass as JSON.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parse(cmd.OutOrStdout(), args, parsePitches)
	},
}

type parsedChord struct {
	model.ChordResponse
	Pitches *model.NotesResponse `json:"pitches,omitempty"`
}

func chordResponse(c *chord.Chord) model.ChordResponse {
	return model.ChordResponse{
		Notation:   c.Notation(),
		IsNoChord:  c.IsNoChord(),
		Descriptor: c.Descriptor(),
	}
}

// notesResponse is empty under the no-chord, which has no intervals.
func notesResponse(c *chord.Chord, pitches []float64) model.NotesResponse {
	res := model.NotesResponse{Chord: c.Notation(), Intervals: []int{}, IsChordNote: []bool{}}
	if c.IsNoChord() {
		return res
	}
	for _, p := range pitches {
		interval, _ := c.IntervalToRoot(int(math.RoundToEven(p)))
		isNote, _ := c.IsChordNote(p)
		res.Intervals = append(res.Intervals, interval)
		res.IsChordNote = append(res.IsChordNote, isNote)
	}
	return res
}

func parse(w io.Writer, notations []string, pitches []float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	for _, s := range notations {
		c, err := chord.New(s)
		if err != nil {
			return err
		}
		out := parsedChord{ChordResponse: chordResponse(c)}
		if len(pitches) > 0 {
			res := notesResponse(c, pitches)
			out.Pitches = &res
		}
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("writing %v: %w", s, err)
		}
	}
	return nil
}
