// Package notation parses chord symbols in the syntax of Harte et al.,
// "Symbolic Representation of Musical Chords" (ISMIR 2005):
//
//	chord       := no_chord | root [ ":" quality ] [ "/" bass ]
//	no_chord    := "N" | "N.C." | "X"
//	root        := letter accidental*
//	quality     := shorthand [ degree_list ] | degree_list
//	degree_list := "(" degree ( "," degree )* ")"
//	degree      := [ "*" ] accidental* numeral accidental*
//	bass        := accidental* numeral accidental*
//
// Each production is reduced by a transform function as soon as it is
// recognized and the resulting fragments are folded into one descriptor.
// The parser keeps no state between calls and is safe for concurrent use.
package notation

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/chordex/model"
)

// Parse converts a chord string into its normalized descriptor.
func Parse(s string) (model.ChordDescriptor, error) {
	fragments, err := parseFragments(s)
	if err != nil {
		return model.ChordDescriptor{}, err
	}
	return assemble(fragments), nil
}

type parser struct {
	input string
	pos   int
}

func parseFragments(s string) ([]fragment, error) {
	if noChordSymbols[s] {
		return []fragment{transformNoChord()}, nil
	}

	p := &parser{input: s}
	if p.done() {
		return nil, p.errorf("empty chord")
	}

	var fragments []fragment
	root, err := p.root()
	if err != nil {
		return nil, err
	}
	fragments = append(fragments, root)

	if p.accept(':') {
		quality, err := p.quality()
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, quality...)
	}

	if p.accept('/') {
		d, err := p.degree(false)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, transformBass(d))
	}

	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return fragments, nil
}

func (p *parser) root() (fragment, error) {
	start := p.pos
	letter := p.peek()
	if _, ok := letterClasses[upper(letter)]; !ok {
		return fragment{}, p.errorf("expected note letter")
	}
	p.pos++
	accidentals := p.accidentals()
	return transformRoot(letter, accidentals, p.input[start:p.pos]), nil
}

func (p *parser) quality() ([]fragment, error) {
	var fragments []fragment
	if p.peek() != '(' {
		start := p.pos
		for !p.done() && isAlnum(p.peek()) {
			p.pos++
		}
		name := p.input[start:p.pos]
		if name == "" {
			return nil, p.errorf("expected quality after ':'")
		}
		f, ok := transformShorthand(name)
		if !ok {
			return nil, &UnknownQualityError{Input: p.input, Name: name}
		}
		fragments = append(fragments, f)
		if p.peek() != '(' {
			return fragments, nil
		}
	}

	list, err := p.degreeList()
	if err != nil {
		return nil, err
	}
	return append(fragments, list), nil
}

func (p *parser) degreeList() (fragment, error) {
	if !p.accept('(') {
		return fragment{}, p.errorf("expected '('")
	}
	var degrees []degree
	for {
		d, err := p.degree(true)
		if err != nil {
			return fragment{}, err
		}
		degrees = append(degrees, d)

		if p.accept(',') {
			continue
		}
		if p.accept(')') {
			return transformDegreeList(degrees), nil
		}
		return fragment{}, p.errorf("expected ',' or ')'")
	}
}

func (p *parser) degree(allowExclude bool) (degree, error) {
	exclude := false
	if p.peek() == '*' {
		if !allowExclude {
			return degree{}, p.errorf("'*' is not allowed here")
		}
		exclude = true
		p.pos++
	}

	accidentals := p.accidentals()

	start := p.pos
	for !p.done() && isDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return degree{}, p.errorf("expected degree numeral")
	}
	if p.input[start] == '0' && p.pos-start > 1 {
		p.pos = start
		return degree{}, p.errorf("degree numeral has a leading zero")
	}
	numeral, err := strconv.Atoi(p.input[start:p.pos])
	if _, ok := numeralSteps[numeral]; err != nil || !ok {
		p.pos = start
		return degree{}, p.errorf("degree numeral must be between 1 and 13")
	}

	accidentals += p.accidentals()
	return transformDegree(exclude, numeral, accidentals), nil
}

func (p *parser) accidentals() string {
	start := p.pos
	for !p.done() && isAccidental(p.peek()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) accept(c byte) bool {
	if p.peek() == c && !p.done() {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.input, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
