// Package intonation converts between MIDI pitch and frequency and gives the
// just intonation correction for a note's interval above the chord root.
package intonation

import (
	"math"

	"github.com/jsphweid/chordex/chord"
	"github.com/jsphweid/chordex/util"
)

const referencePitch = 69 // A4

// 7-limit just intonation deviation from 12-TET in semitones, by interval
// above the root.
var justOffsets = [12]float64{
	0, 0.117, 0.039, 0.156, -0.137, -0.02, -0.175, 0.02, 0.137, -0.156, 0.176, -0.117,
}

func MidiToHz(pitch float64, ref float64) float64 {
	return ref * math.Pow(2, (pitch-referencePitch)/12)
}

func HzToMidi(hz float64, ref float64) float64 {
	return 12*(math.Log2(hz)-math.Log2(ref)) + referencePitch
}

func JustOffset(interval int) float64 {
	return justOffsets[util.Mod(interval, 12)]
}

// JustPitch is the fractional MIDI pitch of pitch tuned against the chord root.
func JustPitch(c *chord.Chord, pitch int) (float64, error) {
	interval, err := c.IntervalToRoot(pitch)
	if err != nil {
		return 0, err
	}
	return float64(pitch) + JustOffset(interval), nil
}
