package model

type ParseRequestBody struct {
	Chord string `json:"chord"`
}

type ChordResponse struct {
	Notation   string          `json:"notation"`
	IsNoChord  bool            `json:"is_no_chord"`
	Descriptor ChordDescriptor `json:"descriptor"`
}

type SequenceCreatedResponse struct {
	Id        string `json:"id"`
	Intervals int    `json:"intervals"`
}

type SequenceListResponse struct {
	Ids []string `json:"ids"`
}

type NotesRequestBody struct {
	Position float64   `json:"position"`
	Pitches  []float64 `json:"pitches"`
}

type NotesResponse struct {
	Chord       string `json:"chord"`
	Intervals   []int  `json:"intervals"`
	IsChordNote []bool `json:"is_chord_note"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
