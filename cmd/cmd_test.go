package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/chordex/model"
)

func TestParseOutput(t *testing.T) {
	var buf bytes.Buffer
	err := parse(&buf, []string{"D:maj", "N"}, []float64{62, 63, 66})

	assert := assert.New(t)
	assert.NoError(err)

	decoder := json.NewDecoder(&buf)
	var first, second parsedChord
	assert.NoError(decoder.Decode(&first))
	assert.NoError(decoder.Decode(&second))

	assert.Equal("D:maj", first.Notation)
	assert.Equal([]int{0, 4, 7}, first.Descriptor.RelativeSteps)
	assert.Equal(&model.NotesResponse{
		Chord:       "D:maj",
		Intervals:   []int{0, 1, 4},
		IsChordNote: []bool{true, false, true},
	}, first.Pitches)

	assert.True(second.IsNoChord)
	assert.Empty(second.Pitches.Intervals)
}

func TestParseOutputError(t *testing.T) {
	err := parse(&bytes.Buffer{}, []string{"C:nope"}, nil)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chords.csv")
	assert.NoError(t, os.WriteFile(path, []byte(chorale), 0644))

	seq, err := loadSequence(path)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, lookup(&buf, seq, []float64{0, 1.5, 3}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "D:maj")
	assert.Contains(t, lines[2], "F#:(*1,3,5,b7)/5")
	assert.Contains(t, lines[3], "N.C.")
}

func TestLoadSequenceToleratesExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chords.csv")
	assert.NoError(t, os.WriteFile(path, []byte("start_meas,end_meas,chord,x\n0,1,C,1\n"), 0644))

	seq, err := loadSequence(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, seq.Len())
}

func TestPrintAlignment(t *testing.T) {
	aligned := []model.AlignedNote{
		{Note: model.Note{Pitch: 66}, Chord: "D:maj", Interval: 4, IsChordTone: true, EqualHz: 369.99, JustHz: 367.07},
		{Note: model.Note{Pitch: 60, StartMeas: 2}, Chord: "N", Interval: -1, EqualHz: 261.63, JustHz: 261.63},
	}

	var buf bytes.Buffer
	assert.NoError(t, printAlignment(&buf, aligned))
	out := buf.String()
	assert.Contains(t, out, "369.99")
	assert.Contains(t, out, "2 notes, 1 under no-chord, 1 chord tones (100.0% of notes under a chord)")
}

func TestFilterTrack(t *testing.T) {
	notes := []model.Note{{Track: 0, Pitch: 60}, {Track: 1, Pitch: 62}, {Track: 1, Pitch: 64}}
	assert.Equal(t, []model.Note{{Track: 1, Pitch: 62}, {Track: 1, Pitch: 64}}, filterTrack(notes, 1))
}
