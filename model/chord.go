package model

import "golang.org/x/exp/slices"

// PitchClass is a note modulo the octave, 0 == C.
type PitchClass int

const NoChordLabel = "N.C."

// ChordDescriptor is the normalized result of parsing one chord string.
type ChordDescriptor struct {
	HasRoot   bool       `json:"has_root"`
	Root      PitchClass `json:"root"`
	RootLabel string     `json:"root_label"`

	// sorted ascending, no duplicates, each in [0, 11]
	RelativeSteps []int `json:"relative_steps"`

	// interval of the bass note above the root
	Bass int `json:"bass"`
}

func (d ChordDescriptor) HasStep(step int) bool {
	_, found := slices.BinarySearch(d.RelativeSteps, step)
	return found
}

// Note is a single score note placed on the measure axis.
type Note struct {
	Track     int     `json:"track"`
	Channel   uint8   `json:"channel"`
	Pitch     uint8   `json:"pitch"`
	StartTick int64   `json:"start_tick"`
	StartMeas float64 `json:"start_meas"`
	EndMeas   float64 `json:"end_meas"`
}

type AlignedNote struct {
	Note

	Chord string `json:"chord"`
	// -1 under no-chord
	Interval    int     `json:"interval"`
	IsChordTone bool    `json:"is_chord_tone"`
	EqualHz     float64 `json:"equal_hz"`
	JustHz      float64 `json:"just_hz"`
}
