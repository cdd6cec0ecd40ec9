package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsphweid/chordex/align"
	"github.com/jsphweid/chordex/constants"
	"github.com/jsphweid/chordex/midi"
	"github.com/jsphweid/chordex/model"
)

var (
	alignRef   float64
	alignTrack int
)

func init() {
	alignCmd.Flags().Float64Var(&alignRef, "ref", 0, "frequency of A4 in Hz (default $A4_HZ or 440)")
	alignCmd.Flags().IntVar(&alignTrack, "track", -1, "only align notes of this track")
	rootCmd.AddCommand(alignCmd)
}

var alignCmd = &cobra.Command{
	Use:   "align FILE.mid FILE.csv",
	Short: "Aligns score notes with chord annotations",
	Long: `Reads the notes of a MIDI score, looks up the chord annotated at each note's
start measure and prints its interval, whether it is a chord tone and its
equal tempered and just intonation frequencies.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := alignRef
		if ref <= 0 {
			ref = constants.GetReferenceHz()
		}

		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		notes, err := midi.Notes(s)
		if err != nil {
			return err
		}
		if alignTrack >= 0 {
			notes = filterTrack(notes, alignTrack)
		}

		seq, err := loadSequence(args[1])
		if err != nil {
			return err
		}

		aligned, err := align.Align(notes, seq, ref)
		if err != nil {
			return err
		}
		slog.Debug("aligned notes", "score", args[0], "notes", len(aligned), "ref", ref)
		return printAlignment(cmd.OutOrStdout(), aligned)
	},
}

func filterTrack(notes []model.Note, track int) []model.Note {
	var res []model.Note
	for _, n := range notes {
		if n.Track == track {
			res = append(res, n)
		}
	}
	return res
}

func printAlignment(w io.Writer, aligned []model.AlignedNote) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tSTART\tEND\tPITCH\tCHORD\tINTERVAL\tCHORD TONE\t12TET HZ\tJI HZ")
	for _, a := range aligned {
		interval := "-"
		if a.Interval >= 0 {
			interval = fmt.Sprint(a.Interval)
		}
		fmt.Fprintf(tw, "%v\t%.3f\t%.3f\t%v\t%v\t%v\t%v\t%.2f\t%.2f\n",
			a.Track, a.StartMeas, a.EndMeas, a.Pitch, a.Chord, interval, a.IsChordTone, a.EqualHz, a.JustHz)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := align.Summarize(aligned)
	_, err := fmt.Fprintf(w, "\n%d notes, %d under no-chord, %d chord tones (%.1f%% of notes under a chord)\n",
		summary.Notes, summary.NoChord, summary.ChordTones, 100*summary.ChordToneRatio())
	return err
}
