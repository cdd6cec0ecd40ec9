//go:build e2e
// +build e2e

package e2e_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jsphweid/chordex/cmd"
	"github.com/jsphweid/chordex/model"
	"github.com/stretchr/testify/assert"
)

var handler http.Handler

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "chordex-e2e")
	if err != nil {
		panic(err.Error())
	}
	os.Setenv("INDEX_PATH", dir)
	os.Setenv("DYNAMO_ENDPOINT", "")

	handler, err = cmd.NewHandler()
	if err != nil {
		panic(err.Error())
	}

	exitVal := m.Run()
	os.RemoveAll(dir)
	os.Exit(exitVal)
}

func request(method string, target string, body string) *http.Response {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Result()
}

func decode(resp *http.Response, v any) {
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, v); err != nil {
		panic(err.Error())
	}
}

func TestUploadAndLookupE2E(t *testing.T) {
	table := "start_meas,end_meas,chord\n0,1,D:maj\n1,2,A:7/3\n2,4,B:min\n"
	resp := request(http.MethodPost, "/sequences", table)

	assert := assert.New(t)
	assert.Equal(http.StatusCreated, resp.StatusCode)

	var created model.SequenceCreatedResponse
	decode(resp, &created)
	assert.Equal(3, created.Intervals)

	resp = request(http.MethodGet, "/sequences/"+created.Id+"/chord?position=1.25", "")
	assert.Equal(http.StatusOK, resp.StatusCode)

	var chord model.ChordResponse
	decode(resp, &chord)
	assert.Equal(model.ChordResponse{
		Notation: "A:7/3",
		Descriptor: model.ChordDescriptor{
			HasRoot:       true,
			Root:          9,
			RootLabel:     "A",
			RelativeSteps: []int{0, 4, 7, 10},
			Bass:          4,
		},
	}, chord)

	resp = request(http.MethodPost, "/sequences/"+created.Id+"/notes", `{"position": 3, "pitches": [71, 73, 74]}`)
	var notes model.NotesResponse
	decode(resp, &notes)
	assert.Equal([]bool{true, false, true}, notes.IsChordNote)
}

func TestParseE2E(t *testing.T) {
	resp := request(http.MethodPost, "/parse", `{"chord": "X"}`)

	var chord model.ChordResponse
	decode(resp, &chord)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.True(chord.IsNoChord)
	assert.Equal(model.NoChordLabel, chord.Descriptor.RootLabel)
}
