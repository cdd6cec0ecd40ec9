// Package sequence maps positions on a musical time axis (usually elapsed
// measures) to the chord annotated there.
package sequence

import (
	"errors"
	"fmt"
	"math"

	"github.com/jsphweid/chordex/chord"
)

var (
	ErrShape    = errors.New("sequence: starts, ends and chords must have the same length")
	ErrNilChord = errors.New("sequence: nil chord")
	ErrInverted = errors.New("sequence: interval ends before it starts")
)

// OverlapError means more than one interval contains Position.
type OverlapError struct {
	Position float64
	Indices  []int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("sequence: %d intervals overlap at position %v (indices %v)", len(e.Indices), e.Position, e.Indices)
}

// Interval is the half-open range [Start, End) during which Chord is active.
type Interval struct {
	Start float64
	End   float64
	Chord *chord.Chord
}

func (i Interval) Contains(position float64) bool {
	return position >= i.Start && position < i.End
}

// Empty intervals contain no position.
func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// ChordSequence is read-only after construction and safe for concurrent use.
type ChordSequence struct {
	intervals []Interval
}

// FromBounds pairs starts[i], ends[i] and chords[i]. Overlapping intervals
// are not rejected here: ChordAt reports them, Validate checks them all.
func FromBounds(starts, ends []float64, chords []*chord.Chord) (*ChordSequence, error) {
	if len(starts) != len(ends) || len(starts) != len(chords) {
		return nil, fmt.Errorf("%w (got %d, %d, %d)", ErrShape, len(starts), len(ends), len(chords))
	}

	intervals := make([]Interval, len(starts))
	for i := range starts {
		if chords[i] == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilChord, i)
		}
		intervals[i] = Interval{Start: starts[i], End: ends[i], Chord: chords[i]}
	}
	return &ChordSequence{intervals: intervals}, nil
}

// FromNotations parses every notation before building the sequence.
func FromNotations(starts, ends []float64, notations []string) (*ChordSequence, error) {
	if len(starts) != len(ends) || len(starts) != len(notations) {
		return nil, fmt.Errorf("%w (got %d, %d, %d)", ErrShape, len(starts), len(ends), len(notations))
	}

	chords := make([]*chord.Chord, len(notations))
	for i, s := range notations {
		c, err := chord.New(s)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		chords[i] = c
	}
	return FromBounds(starts, ends, chords)
}

func (s *ChordSequence) Len() int {
	return len(s.intervals)
}

func (s *ChordSequence) Intervals() []Interval {
	return append([]Interval(nil), s.intervals...)
}

// ChordAt returns the chord active at position, or the no-chord when no
// interval contains it.
func (s *ChordSequence) ChordAt(position float64) (*chord.Chord, error) {
	var matches []int
	for i, interval := range s.intervals {
		if interval.Contains(position) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return chord.NoChord(), nil
	case 1:
		return s.intervals[matches[0]].Chord, nil
	}
	return nil, &OverlapError{Position: position, Indices: matches}
}

// Validate rejects intervals that end before they start and returns an
// OverlapError for the first pair of intervals that share a position.
// Zero-length intervals are allowed and never overlap.
func (s *ChordSequence) Validate() error {
	for i, interval := range s.intervals {
		if interval.End < interval.Start {
			return fmt.Errorf("%w: index %d [%v, %v)", ErrInverted, i, interval.Start, interval.End)
		}
	}

	for i, a := range s.intervals {
		if a.Empty() {
			continue
		}
		for j := i + 1; j < len(s.intervals); j++ {
			b := s.intervals[j]
			if b.Empty() {
				continue
			}
			if a.Start < b.End && b.Start < a.End {
				return &OverlapError{Position: math.Max(a.Start, b.Start), Indices: []int{i, j}}
			}
		}
	}
	return nil
}
