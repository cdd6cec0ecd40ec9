// Package annotation reads chord annotation tables: one row per chord with
// its start and end position in measures.
//
//	start_meas,end_meas,chord
//	0,1,D:maj
//	1,2.5,A:7/3
package annotation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jsphweid/chordex/sequence"
)

const (
	StartColumn = "start_meas"
	EndColumn   = "end_meas"
	ChordColumn = "chord"
)

var ExpectedColumns = []string{StartColumn, EndColumn, ChordColumn}

var ErrMissingColumn = errors.New("annotation: missing column")

// SchemaError means the header has columns besides the expected ones. It is
// returned together with complete columns.
type SchemaError struct {
	Expected []string
	Got      []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("annotation: schema mismatch, expected columns %v but got %v", e.Expected, e.Got)
}

// Columns holds the three decoded annotation columns, all the same length.
type Columns struct {
	Starts []float64
	Ends   []float64
	Chords []string
}

func (c Columns) Len() int {
	return len(c.Starts)
}

// Sequence builds the chord sequence and rejects overlapping rows.
func (c Columns) Sequence() (*sequence.ChordSequence, error) {
	seq, err := sequence.FromNotations(c.Starts, c.Ends, c.Chords)
	if err != nil {
		return nil, err
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func ReadFile(path string) (Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return Columns{}, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a comma separated annotation table. A *SchemaError is not
// fatal: the returned columns are complete. Callers decide whether to log it.
func Read(r io.Reader) (Columns, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Columns{}, errors.New("annotation: missing header")
	}
	if err != nil {
		return Columns{}, fmt.Errorf("annotation: reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index := make(map[string]int)
	for i, name := range header {
		index[name] = i
	}
	for _, name := range ExpectedColumns {
		if _, ok := index[name]; !ok {
			return Columns{}, fmt.Errorf("%w %q (got %v)", ErrMissingColumn, name, header)
		}
	}

	var cols Columns
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Columns{}, fmt.Errorf("annotation: %w", err)
		}

		start, err := parseFloat(record[index[StartColumn]])
		if err != nil {
			return Columns{}, fmt.Errorf("annotation: line %d: %v: %w", line, StartColumn, err)
		}
		end, err := parseFloat(record[index[EndColumn]])
		if err != nil {
			return Columns{}, fmt.Errorf("annotation: line %d: %v: %w", line, EndColumn, err)
		}

		cols.Starts = append(cols.Starts, start)
		cols.Ends = append(cols.Ends, end)
		cols.Chords = append(cols.Chords, strings.TrimSpace(record[index[ChordColumn]]))
	}

	if len(header) != len(ExpectedColumns) {
		return cols, &SchemaError{Expected: slices.Clone(ExpectedColumns), Got: header}
	}
	return cols, nil
}

func Write(w io.Writer, cols Columns) error {
	if len(cols.Ends) != cols.Len() || len(cols.Chords) != cols.Len() {
		return sequence.ErrShape
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExpectedColumns); err != nil {
		return err
	}
	for i := range cols.Starts {
		record := []string{
			strconv.FormatFloat(cols.Starts[i], 'g', -1, 64),
			strconv.FormatFloat(cols.Ends[i], 'g', -1, 64),
			cols.Chords[i],
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
