package notation

import "fmt"

// SyntaxError reports input the grammar does not accept.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

// Near is the unconsumed rest of the input starting at the failure.
func (e *SyntaxError) Near() string {
	if e.Offset >= len(e.Input) {
		return ""
	}
	return e.Input[e.Offset:]
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("notation: syntax error in %q at offset %d (near %q): %s", e.Input, e.Offset, e.Near(), e.Msg)
}

// UnknownQualityError reports a well-formed quality name that is not in the vocabulary.
type UnknownQualityError struct {
	Input string
	Name  string
}

func (e *UnknownQualityError) Error() string {
	return fmt.Sprintf("notation: unknown quality %q in %q", e.Name, e.Input)
}
