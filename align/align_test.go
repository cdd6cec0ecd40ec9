package align

import (
	"errors"
	"testing"

	"github.com/jsphweid/chordex/intonation"
	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/sequence"
	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	seq, err := sequence.FromNotations(
		[]float64{0, 1},
		[]float64{1, 2},
		[]string{"D:maj", "F#:(*1,3,5,b7)/5"},
	)
	assert.NoError(t, err)

	notes := []model.Note{
		{Pitch: 66, StartMeas: 0},
		{Pitch: 67, StartMeas: 0.5},
		{Pitch: 66, StartMeas: 1},
		{Pitch: 70, StartMeas: 1.5},
		{Pitch: 60, StartMeas: 2},
	}
	aligned, err := Align(notes, seq, 442)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(aligned, 5)

	assert.Equal("D:maj", aligned[0].Chord)
	assert.Equal(4, aligned[0].Interval)
	assert.True(aligned[0].IsChordTone)
	assert.InDelta(intonation.MidiToHz(66, 442), aligned[0].EqualHz, 1e-9)
	assert.InDelta(intonation.MidiToHz(66-0.137, 442), aligned[0].JustHz, 1e-9)

	assert.Equal(5, aligned[1].Interval)
	assert.False(aligned[1].IsChordTone)

	// root is excluded from the second chord
	assert.Equal(0, aligned[2].Interval)
	assert.False(aligned[2].IsChordTone)
	assert.Equal(4, aligned[3].Interval)
	assert.True(aligned[3].IsChordTone)

	assert.Equal("N", aligned[4].Chord)
	assert.Equal(-1, aligned[4].Interval)
	assert.Equal(aligned[4].EqualHz, aligned[4].JustHz)

	summary := Summarize(aligned)
	assert.Equal(Summary{Notes: 5, ChordTones: 2, NoChord: 1}, summary)
	assert.Equal(0.5, summary.ChordToneRatio())
}

func TestAlignOverlap(t *testing.T) {
	seq, _ := sequence.FromNotations([]float64{0, 0.5}, []float64{1, 1}, []string{"C", "G"})
	_, err := Align([]model.Note{{Pitch: 60, StartMeas: 0.75}}, seq, 440)

	var overlapErr *sequence.OverlapError
	assert.True(t, errors.As(err, &overlapErr))
}

func TestEmptySummary(t *testing.T) {
	assert.Equal(t, 0.0, Summarize(nil).ChordToneRatio())
}
