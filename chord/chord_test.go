package chord

import (
	"errors"
	"testing"

	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/notation"
	"github.com/stretchr/testify/assert"
)

func midiRange(from, to int) []int {
	var res []int
	for p := from; p < to; p++ {
		res = append(res, p)
	}
	return res
}

func TestDMajor(t *testing.T) {
	c, err := New("D:maj")
	assert := assert.New(t)
	assert.NoError(err)

	assert.False(c.IsNoChord())
	interval, err := c.IntervalToRoot(66)
	assert.NoError(err)
	assert.Equal(4, interval)
	interval, err = c.IntervalToBass(66)
	assert.NoError(err)
	assert.Equal(4, interval)
	isNote, err := c.IsChordNote(66)
	assert.NoError(err)
	assert.True(isNote)

	intervals, err := IntervalsToRoot(c, midiRange(62, 74))
	assert.NoError(err)
	assert.Equal(midiRange(0, 12), intervals)

	notes, err := ChordNotes(c, midiRange(62, 74))
	assert.NoError(err)
	assert.Equal([]bool{true, false, false, false, true, false, false, true, false, false, false, false}, notes)
}

func TestFSharpWithoutRootOverFifth(t *testing.T) {
	c, err := New("F#:(*1,3,5,b7)/5")
	assert := assert.New(t)
	assert.NoError(err)

	assert.False(c.IsNoChord())
	interval, _ := c.IntervalToRoot(66)
	assert.Equal(0, interval)
	interval, _ = c.IntervalToBass(66)
	assert.Equal(5, interval)
	isNote, _ := c.IsChordNote(66)
	assert.False(isNote)

	intervals, err := IntervalsToBass(c, midiRange(62, 74))
	assert.NoError(err)
	assert.Equal([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0}, intervals)
}

func TestNoChords(t *testing.T) {
	for _, s := range []string{"X", "N", "N.C."} {
		c, err := New(s)
		assert := assert.New(t)
		assert.NoError(err)
		assert.True(c.IsNoChord(), s)
		assert.Equal(model.NoChordLabel, c.RootLabel())

		_, err = c.IntervalToRoot(60)
		assert.True(errors.Is(err, ErrNoRoot))
		_, err = c.IntervalToBass(60)
		assert.True(errors.Is(err, ErrNoRoot))
		_, err = c.IsChordNote(60)
		assert.True(errors.Is(err, ErrNoRoot))
		_, err = ChordNotes(c, []float64{60})
		assert.True(errors.Is(err, ErrNoRoot))
		_, err = IntervalsToRoot(c, []uint8{60})
		assert.True(errors.Is(err, ErrNoRoot))
	}

	assert.True(t, NoChord().IsNoChord())
	assert.Equal(t, "N", NoChord().Notation())
}

func TestFractionalPitchesRoundToNearestSemitone(t *testing.T) {
	c, err := New("C:maj")
	assert := assert.New(t)
	assert.NoError(err)

	notes, err := ChordNotes(c, []float64{59.6, 60.4, 63.7, 64.49, 66.5, 67.5, 68.5})
	assert.NoError(err)
	// 66.5 rounds to 66, 67.5 to 68, 68.5 to 68
	assert.Equal([]bool{true, true, true, true, false, false, false}, notes)
}

func TestNegativeAndLowPitches(t *testing.T) {
	c, _ := New("Bb:min")
	interval, err := c.IntervalToRoot(0)
	assert.NoError(t, err)
	assert.Equal(t, 2, interval)

	interval, _ = c.IntervalToRoot(-2)
	assert.Equal(t, 0, interval)
}

func TestAccessorsDoNotAlias(t *testing.T) {
	c, _ := New("G:7/b7")
	steps := c.Steps()
	steps[0] = 42
	d := c.Descriptor()
	d.RelativeSteps[1] = 42

	assert := assert.New(t)
	assert.Equal([]int{0, 4, 7, 10}, c.Steps())
	root, ok := c.Root()
	assert.True(ok)
	assert.Equal(model.PitchClass(7), root)
	assert.Equal(10, c.Bass())
	assert.Equal("G:7/b7", c.String())
}

func TestNewPropagatesParseErrors(t *testing.T) {
	_, err := New("C:wat")
	var qualityErr *notation.UnknownQualityError
	assert.True(t, errors.As(err, &qualityErr))

	_, err = New("C:(")
	var syntaxErr *notation.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}
