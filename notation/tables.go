package notation

import (
	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/util"
)

// no-chord symbols, matched against the whole input
var noChordSymbols = map[string]bool{
	"N":    true,
	"N.C.": true,
	"X":    true,
}

var letterClasses = map[byte]model.PitchClass{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// semitones above the root for each scale degree numeral
var numeralSteps = map[int]int{
	1: 0, 2: 2, 3: 4, 4: 5, 5: 7, 6: 9, 7: 11,
	8: 12, 9: 2, 10: 4, 11: 5, 12: 7, 13: 9,
}

var shorthandSteps = map[string][]int{
	"maj":     {0, 4, 7},
	"min":     {0, 3, 7},
	"dim":     {0, 3, 6},
	"aug":     {0, 4, 8},
	"maj7":    {0, 4, 7, 11},
	"min7":    {0, 3, 7, 10},
	"dim7":    {0, 3, 6, 9},
	"hdim7":   {0, 3, 6, 10},
	"minmaj7": {0, 3, 7, 11},
	"maj6":    {0, 4, 7, 9},
	"min6":    {0, 3, 7, 9},
	"maj9":    {0, 4, 7, 11, 2},
	"min9":    {0, 3, 7, 10, 2},
	"sus4":    {0, 5, 7},
	"sus2":    {0, 2, 7},
	"7":       {0, 4, 7, 10},
	"9":       {0, 4, 7, 10, 2},
	"11":      {0, 4, 7, 10, 2, 5},
	"13":      {0, 4, 7, 10, 2, 5, 9},
}

// applied when a chord has no quality clause at all
var defaultSteps = shorthandSteps["maj"]

// Shorthands lists every quality name the grammar accepts, sorted.
func Shorthands() []string {
	return util.GetSortedKeys(shorthandSteps)
}

// ShorthandSteps returns a copy of the steps a quality name expands to.
func ShorthandSteps(name string) ([]int, bool) {
	steps, ok := shorthandSteps[name]
	if !ok {
		return nil, false
	}
	return append([]int(nil), steps...), true
}

func accidentalDelta(c byte) int {
	switch c {
	case '#':
		return 1
	case 'b':
		return -1
	}
	return 0
}

func isAccidental(c byte) bool {
	return c == '#' || c == 'b'
}
