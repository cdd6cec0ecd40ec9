// Package align looks up the annotated chord under each score note and tunes
// the note against it.
package align

import (
	"fmt"

	"github.com/jsphweid/chordex/intonation"
	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/sequence"
)

type Summary struct {
	Notes      int
	ChordTones int
	NoChord    int
}

// ChordToneRatio is the share of notes under a chord that are chord tones.
func (s Summary) ChordToneRatio() float64 {
	underChord := s.Notes - s.NoChord
	if underChord == 0 {
		return 0
	}
	return float64(s.ChordTones) / float64(underChord)
}

// Align uses the chord active at each note's start. Notes under the no-chord
// get interval -1 and keep their equal tempered frequency.
func Align(notes []model.Note, seq *sequence.ChordSequence, ref float64) ([]model.AlignedNote, error) {
	res := make([]model.AlignedNote, 0, len(notes))
	for _, n := range notes {
		c, err := seq.ChordAt(n.StartMeas)
		if err != nil {
			return nil, fmt.Errorf("note %v at measure %v: %w", n.Pitch, n.StartMeas, err)
		}

		pitch := int(n.Pitch)
		equalHz := intonation.MidiToHz(float64(pitch), ref)
		aligned := model.AlignedNote{
			Note:     n,
			Chord:    c.Notation(),
			Interval: -1,
			EqualHz:  equalHz,
			JustHz:   equalHz,
		}

		if !c.IsNoChord() {
			// neither query can fail once the chord has a root
			aligned.Interval, _ = c.IntervalToRoot(pitch)
			aligned.IsChordTone, _ = c.IsChordNote(float64(pitch))
			justPitch, _ := intonation.JustPitch(c, pitch)
			aligned.JustHz = intonation.MidiToHz(justPitch, ref)
		}
		res = append(res, aligned)
	}
	return res, nil
}

func Summarize(aligned []model.AlignedNote) Summary {
	var s Summary
	for _, a := range aligned {
		s.Notes++
		if a.Interval < 0 {
			s.NoChord++
		}
		if a.IsChordTone {
			s.ChordTones++
		}
	}
	return s
}
