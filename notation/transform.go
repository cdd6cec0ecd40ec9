package notation

import (
	"golang.org/x/exp/slices"

	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/util"
)

type fragmentKind int

const (
	noChordFragment fragmentKind = iota
	rootFragment
	shorthandFragment
	degreeListFragment
	bassFragment
)

// fragment is the partial result of one reduced production. Only the fields
// belonging to kind are meaningful.
type fragment struct {
	kind fragmentKind

	root  model.PitchClass
	label string

	steps  []int
	add    []int
	remove []int

	bass int
}

// degree is one scale degree from a degree list or bass clause. Exclude
// marks a removal, which keeps "remove the root" distinct from "add the root".
type degree struct {
	step    int
	exclude bool
}

func transformNoChord() fragment {
	return fragment{kind: noChordFragment, label: model.NoChordLabel}
}

func transformRoot(letter byte, accidentals string, label string) fragment {
	pc := int(letterClasses[upper(letter)])
	for i := 0; i < len(accidentals); i++ {
		pc += accidentalDelta(accidentals[i])
	}
	return fragment{
		kind:  rootFragment,
		root:  model.PitchClass(util.Mod(pc, 12)),
		label: label,
	}
}

func transformShorthand(name string) (fragment, bool) {
	steps, ok := shorthandSteps[name]
	if !ok {
		return fragment{}, false
	}
	return fragment{kind: shorthandFragment, steps: steps}, true
}

func transformDegree(exclude bool, numeral int, accidentals string) degree {
	step := numeralSteps[numeral]
	for i := 0; i < len(accidentals); i++ {
		step += accidentalDelta(accidentals[i])
	}
	return degree{step: util.Mod(step, 12), exclude: exclude}
}

func transformDegreeList(degrees []degree) fragment {
	f := fragment{kind: degreeListFragment}
	for _, d := range degrees {
		if d.exclude {
			f.remove = append(f.remove, d.step)
		} else {
			f.add = append(f.add, d.step)
		}
	}
	return f
}

func transformBass(d degree) fragment {
	return fragment{kind: bassFragment, bass: d.step}
}

// assemble folds the fragments of one chord into a descriptor. Removals are
// applied after every addition, so their position in the source is irrelevant.
func assemble(fragments []fragment) model.ChordDescriptor {
	d := model.ChordDescriptor{RootLabel: model.NoChordLabel}

	var base, add, remove []int
	hasQuality := false
	for _, f := range fragments {
		switch f.kind {
		case noChordFragment:
			return model.ChordDescriptor{RootLabel: f.label, RelativeSteps: []int{}}
		case rootFragment:
			d.HasRoot = true
			d.Root = f.root
			d.RootLabel = f.label
		case shorthandFragment:
			hasQuality = true
			base = f.steps
		case degreeListFragment:
			hasQuality = true
			add = append(add, f.add...)
			remove = append(remove, f.remove...)
		case bassFragment:
			d.Bass = f.bass
		}
	}

	if !hasQuality {
		base = defaultSteps
	} else if base == nil {
		// a bare degree list still sounds the root unless it is removed
		base = []int{0}
	}

	steps := make([]int, 0, len(base)+len(add))
	for _, s := range append(append([]int(nil), base...), add...) {
		if !slices.Contains(steps, s) && !slices.Contains(remove, s) {
			steps = append(steps, s)
		}
	}
	slices.Sort(steps)
	d.RelativeSteps = steps
	return d
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
