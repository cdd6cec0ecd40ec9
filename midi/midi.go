package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/chordex/model"
)

var ErrNoMetricTicks = errors.New("midi: file uses SMPTE time, measures need metric ticks")

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("parsing midi file %v: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file %v: %w", filepath, err)
	}
	return res, nil
}

type meterChange struct {
	tick      int64
	num       uint8
	denom     uint8
	startMeas float64
}

// meterMap converts absolute ticks to measures.
type meterMap struct {
	ticksPerQuarter float64
	changes         []meterChange
}

func newMeterMap(s *smf.SMF) (*meterMap, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || mt == 0 {
		return nil, ErrNoMetricTicks
	}

	// 4/4 until the file says otherwise
	changes := []meterChange{{tick: 0, num: 4, denom: 4}}
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var num, denom uint8
			if event.Message.GetMetaMeter(&num, &denom) && num > 0 && denom > 0 {
				changes = append(changes, meterChange{tick: absTicks, num: num, denom: denom})
			}
		}
	}

	// the latest change at a tick wins, the default sorts first at tick 0
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].tick < changes[j].tick
	})
	var deduped []meterChange
	for _, c := range changes {
		if n := len(deduped); n > 0 && deduped[n-1].tick == c.tick {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}

	m := &meterMap{ticksPerQuarter: float64(mt), changes: deduped}
	for i := 1; i < len(m.changes); i++ {
		prev := m.changes[i-1]
		m.changes[i].startMeas = prev.startMeas + float64(m.changes[i].tick-prev.tick)/m.ticksPerMeasure(prev)
	}
	return m, nil
}

func (m *meterMap) ticksPerMeasure(c meterChange) float64 {
	return m.ticksPerQuarter * 4 * float64(c.num) / float64(c.denom)
}

func (m *meterMap) measureAt(tick int64) float64 {
	i := sort.Search(len(m.changes), func(i int) bool {
		return m.changes[i].tick > tick
	}) - 1
	if i < 0 {
		i = 0
	}
	c := m.changes[i]
	return c.startMeas + float64(tick-c.tick)/m.ticksPerMeasure(c)
}

type noteKey struct {
	channel uint8
	key     uint8
}

// Notes returns every note of every track with its position in measures,
// counted from 0 at the start of the file, ordered by start then pitch.
func Notes(s *smf.SMF) ([]model.Note, error) {
	meters, err := newMeterMap(s)
	if err != nil {
		return nil, err
	}

	var notes []model.Note
	for trackNum, events := range s.Tracks {
		pressed := make(map[noteKey][]int64)
		var absTicks int64

		closeNote := func(k noteKey, end int64) {
			starts := pressed[k]
			if len(starts) == 0 {
				return
			}
			start := starts[0]
			pressed[k] = starts[1:]
			notes = append(notes, model.Note{
				Track:     trackNum,
				Channel:   k.channel,
				Pitch:     k.key,
				StartTick: start,
				StartMeas: meters.measureAt(start),
				EndMeas:   meters.measureAt(end),
			})
		}

		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				k := noteKey{channel, key}
				if velocity == 0 {
					closeNote(k, absTicks)
					continue
				}
				pressed[k] = append(pressed[k], absTicks)
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				closeNote(noteKey{channel, key}, absTicks)
			}
		}

		// anything still sounding ends with the track
		for k := range pressed {
			for len(pressed[k]) > 0 {
				closeNote(k, absTicks)
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].StartTick != notes[j].StartTick {
			return notes[i].StartTick < notes[j].StartTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes, nil
}
