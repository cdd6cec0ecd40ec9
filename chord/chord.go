// Package chord wraps a parsed chord symbol with the pitch queries used when
// lining notes up against a chord annotation.
package chord

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/notation"
	"github.com/jsphweid/chordex/util"
)

// ErrNoRoot is returned by interval queries against a no-chord.
var ErrNoRoot = errors.New("chord: no-chord has no root")

const noChordNotation = "N"

// Chord is immutable once built and safe to share between goroutines.
type Chord struct {
	notation   string
	descriptor model.ChordDescriptor
}

var noChord = &Chord{
	notation: noChordNotation,
	descriptor: model.ChordDescriptor{
		RootLabel:     model.NoChordLabel,
		RelativeSteps: []int{},
	},
}

func New(s string) (*Chord, error) {
	d, err := notation.Parse(s)
	if err != nil {
		return nil, err
	}
	return &Chord{notation: s, descriptor: d}, nil
}

// NoChord returns the canonical no-chord value.
func NoChord() *Chord {
	return noChord
}

// Notation is the string the chord was parsed from.
func (c *Chord) Notation() string {
	return c.notation
}

func (c *Chord) String() string {
	return c.notation
}

// Descriptor returns a copy of the parsed chord.
func (c *Chord) Descriptor() model.ChordDescriptor {
	d := c.descriptor
	d.RelativeSteps = c.Steps()
	return d
}

func (c *Chord) Root() (model.PitchClass, bool) {
	return c.descriptor.Root, c.descriptor.HasRoot
}

func (c *Chord) RootLabel() string {
	return c.descriptor.RootLabel
}

// Bass is the interval of the bass note above the root.
func (c *Chord) Bass() int {
	return c.descriptor.Bass
}

func (c *Chord) Steps() []int {
	return append([]int{}, c.descriptor.RelativeSteps...)
}

func (c *Chord) IsNoChord() bool {
	return !c.descriptor.HasRoot
}

// IntervalToRoot is the pitch's distance above the root, 0 to 11.
func (c *Chord) IntervalToRoot(pitch int) (int, error) {
	if c.IsNoChord() {
		return 0, ErrNoRoot
	}
	return util.Mod(pitch-int(c.descriptor.Root), 12), nil
}

// IntervalToBass is the pitch's distance above root plus bass interval.
func (c *Chord) IntervalToBass(pitch int) (int, error) {
	if c.IsNoChord() {
		return 0, ErrNoRoot
	}
	return util.Mod(pitch-int(c.descriptor.Root)-c.descriptor.Bass, 12), nil
}

// IsChordNote rounds pitch to the nearest semitone (ties to even) and
// reports whether it is a chord tone.
func (c *Chord) IsChordNote(pitch float64) (bool, error) {
	interval, err := c.IntervalToRoot(int(math.RoundToEven(pitch)))
	if err != nil {
		return false, err
	}
	return c.descriptor.HasStep(interval), nil
}

type Pitch interface {
	constraints.Integer | constraints.Float
}

func IntervalsToRoot[P constraints.Integer](c *Chord, pitches []P) ([]int, error) {
	return intervals(pitches, c.IntervalToRoot)
}

func IntervalsToBass[P constraints.Integer](c *Chord, pitches []P) ([]int, error) {
	return intervals(pitches, c.IntervalToBass)
}

// ChordNotes is IsChordNote over a slice of pitches, one result per pitch.
func ChordNotes[P Pitch](c *Chord, pitches []P) ([]bool, error) {
	if c.IsNoChord() {
		return nil, ErrNoRoot
	}
	res := make([]bool, len(pitches))
	for i, p := range pitches {
		res[i], _ = c.IsChordNote(float64(p))
	}
	return res, nil
}

func intervals[P constraints.Integer](pitches []P, interval func(int) (int, error)) ([]int, error) {
	res := make([]int, len(pitches))
	for i, p := range pitches {
		v, err := interval(int(p))
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
