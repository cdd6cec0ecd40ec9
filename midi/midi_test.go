package midi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const tpq = 96

// two bars of 4/4, then 3/4 from bar 2
func makeScore() *smf.SMF {
	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(2*4*tpq, smf.MetaMeter(3, 4))
	meta.Close(0)

	var voice smf.Track
	voice.Add(0, gomidi.NoteOn(0, 62, 100))
	voice.Add(4*tpq, gomidi.NoteOff(0, 62))
	voice.Add(0, gomidi.NoteOn(0, 66, 100))
	voice.Add(2*tpq, gomidi.NoteOn(0, 66, 0))
	voice.Add(2*tpq, gomidi.NoteOn(0, 69, 90))
	voice.Add(3*tpq, gomidi.NoteOff(0, 69))
	voice.Add(0, gomidi.NoteOn(1, 57, 90))
	voice.Close(0)

	return newScore(meta, voice)
}

func newScore(tracks ...smf.Track) *smf.SMF {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(tpq)
	for _, tr := range tracks {
		if err := s.Add(tr); err != nil {
			panic(err)
		}
	}
	return s
}

func TestNotesInMeasures(t *testing.T) {
	notes, err := Notes(makeScore())

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 4)

	assert.Equal(uint8(62), notes[0].Pitch)
	assert.Equal(0.0, notes[0].StartMeas)
	assert.Equal(1.0, notes[0].EndMeas)

	assert.Equal(uint8(66), notes[1].Pitch)
	assert.Equal(1.0, notes[1].StartMeas)
	assert.Equal(1.5, notes[1].EndMeas)

	// starts on the downbeat of the first 3/4 bar, lasts one bar
	assert.Equal(uint8(69), notes[2].Pitch)
	assert.Equal(2.0, notes[2].StartMeas)
	assert.Equal(3.0, notes[2].EndMeas)
	assert.Equal(1, notes[2].Track)

	// never released, ends with its track
	assert.Equal(uint8(57), notes[3].Pitch)
	assert.Equal(uint8(1), notes[3].Channel)
	assert.Equal(3.0, notes[3].StartMeas)
	assert.Equal(3.0, notes[3].EndMeas)
}

func TestNotesDefaultMeter(t *testing.T) {
	var voice smf.Track
	voice.Add(2*tpq, gomidi.NoteOn(0, 60, 100))
	voice.Add(tpq, gomidi.NoteOff(0, 60))
	voice.Close(0)
	notes, err := Notes(newScore(voice))
	assert.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, 0.5, notes[0].StartMeas)
	assert.Equal(t, 0.75, notes[0].EndMeas)
}

func TestNotesRequireMetricTicks(t *testing.T) {
	s := &smf.SMF{TimeFormat: smf.TimeCode{FramesPerSecond: 25, SubFrames: 40}}
	_, err := Notes(s)
	assert.True(t, errors.Is(err, ErrNoMetricTicks))
}

func TestReadMidiFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.mid")
	assert.NoError(t, makeScore().WriteFile(path))

	s, err := ReadMidiFile(path)
	assert.NoError(t, err)
	notes, err := Notes(s)
	assert.NoError(t, err)
	assert.Len(t, notes, 4)
}

func TestReadMidiFileErrors(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "garbage.mid")
	assert.NoError(t, os.WriteFile(path, []byte("not a midi file"), 0644))
	_, err = ReadMidiFile(path)
	assert.Error(t, err)
}
