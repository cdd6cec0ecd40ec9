package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/chordex/annotation"
	"github.com/jsphweid/chordex/chord"
	"github.com/jsphweid/chordex/constants"
	"github.com/jsphweid/chordex/db"
	"github.com/jsphweid/chordex/model"
	"github.com/jsphweid/chordex/notation"
	"github.com/jsphweid/chordex/sequence"
	"github.com/jsphweid/chordex/util"
)

// uploads are annotation tables, a few KB at most
const maxBodyBytes = 1 << 20

var errTracksDisabled = errors.New("track storage is not configured, set DYNAMO_ENDPOINT")

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves chord lookups over HTTP",
	Long: `Serves chord parsing and lookups over HTTP. Uploaded annotation tables are
kept in memory and snapshotted to $INDEX_PATH. Per-track annotations are read
from DynamoDB when $DYNAMO_ENDPOINT is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

type sequenceStore struct {
	mu        sync.RWMutex
	columns   map[string]annotation.Columns
	sequences map[string]*sequence.ChordSequence

	// held for a whole snapshot write so shutdown and debounced writes
	// never interleave
	snapshotMu   sync.Mutex
	snapshotPath string
	debounced    func(f func())
}

func newSequenceStore(snapshotPath string) *sequenceStore {
	return &sequenceStore{
		columns:      make(map[string]annotation.Columns),
		sequences:    make(map[string]*sequence.ChordSequence),
		snapshotPath: snapshotPath,
		debounced:    debounce.New(constants.SnapshotDelayMillis * time.Millisecond),
	}
}

// loadSnapshot restores sequences written by an earlier run. Rows that no
// longer build a valid sequence are skipped.
func (s *sequenceStore) loadSnapshot() error {
	snapshot, err := util.ReadBinary[map[string]annotation.Columns](s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cols := range snapshot {
		seq, err := cols.Sequence()
		if err != nil {
			slog.Warn("skipping snapshotted sequence", "id", id, "err", err)
			continue
		}
		s.columns[id] = cols
		s.sequences[id] = seq
	}
	slog.Info("loaded snapshot", "path", s.snapshotPath, "sequences", len(s.sequences))
	return nil
}

func (s *sequenceStore) writeSnapshot() {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[string]annotation.Columns, len(s.columns))
	for id, cols := range s.columns {
		snapshot[id] = cols
	}
	s.mu.RUnlock()

	if err := util.CreateBinary(s.snapshotPath, snapshot); err != nil {
		slog.Error("could not write snapshot", "path", s.snapshotPath, "err", err)
		return
	}
	slog.Debug("wrote snapshot", "path", s.snapshotPath, "sequences", len(snapshot))
}

func (s *sequenceStore) add(cols annotation.Columns, seq *sequence.ChordSequence) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.columns[id] = cols
	s.sequences[id] = seq
	s.mu.Unlock()

	s.debounced(s.writeSnapshot)
	return id
}

func (s *sequenceStore) get(id string) (*sequence.ChordSequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.sequences[id]
	return seq, ok
}

func (s *sequenceStore) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return util.GetSortedKeys(s.sequences)
}

type server struct {
	store  *sequenceStore
	tracks *db.Store
}

func newRouter(s *server) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/parse", s.handleParse).Methods("POST")
	router.HandleFunc("/sequences", s.handleCreateSequence).Methods("POST")
	router.HandleFunc("/sequences", s.handleListSequences).Methods("GET")
	router.HandleFunc("/sequences/{id}/chord", s.handleSequenceChord).Methods("GET")
	router.HandleFunc("/sequences/{id}/notes", s.handleSequenceNotes).Methods("POST")
	router.HandleFunc("/tracks/{track}/chord", s.handleTrackChord).Methods("GET")
	router.HandleFunc("/tracks/{track}", s.handlePutTrack).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("could not write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// statusFor maps chord and sequence errors to a response status.
func statusFor(err error) int {
	var syntaxErr *notation.SyntaxError
	var qualityErr *notation.UnknownQualityError
	var overlapErr *sequence.OverlapError
	switch {
	case errors.As(err, &syntaxErr),
		errors.As(err, &qualityErr),
		errors.Is(err, sequence.ErrShape),
		errors.Is(err, sequence.ErrInverted),
		errors.Is(err, annotation.ErrMissingColumn):
		return http.StatusBadRequest
	case errors.As(err, &overlapErr):
		return http.StatusConflict
	case errors.Is(err, errTracksDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func positionParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("position")
	if raw == "" {
		return 0, errors.New("missing query parameter: position")
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bad position %q", raw)
	}
	return p, nil
}

// readAnnotations decodes and validates an uploaded annotation table.
func readAnnotations(r *http.Request) (annotation.Columns, *sequence.ChordSequence, error) {
	cols, err := annotation.Read(io.LimitReader(r.Body, maxBodyBytes))
	var schemaErr *annotation.SchemaError
	if errors.As(err, &schemaErr) {
		slog.Warn("annotation schema mismatch", "path", r.URL.Path, "got", schemaErr.Got)
	} else if err != nil {
		return cols, nil, err
	}

	seq, err := cols.Sequence()
	if err != nil {
		return cols, nil, err
	}
	return cols, seq, nil
}

func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	var input model.ParseRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("could not decode request body: %w", err))
		return
	}

	c, err := chord.New(input.Chord)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chordResponse(c))
}

func (s *server) handleCreateSequence(w http.ResponseWriter, r *http.Request) {
	cols, seq, err := readAnnotations(r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// anything else wrong with an upload is the client's table
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	id := s.store.add(cols, seq)
	slog.Info("created sequence", "id", id, "intervals", seq.Len())
	writeJSON(w, http.StatusCreated, model.SequenceCreatedResponse{Id: id, Intervals: seq.Len()})
}

func (s *server) handleListSequences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.SequenceListResponse{Ids: s.store.ids()})
}

func (s *server) lookupSequence(w http.ResponseWriter, r *http.Request) (*sequence.ChordSequence, bool) {
	id := mux.Vars(r)["id"]
	seq, ok := s.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no sequence with id %q", id))
	}
	return seq, ok
}

func (s *server) handleSequenceChord(w http.ResponseWriter, r *http.Request) {
	seq, ok := s.lookupSequence(w, r)
	if !ok {
		return
	}
	position, err := positionParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := seq.ChordAt(position)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chordResponse(c))
}

func (s *server) handleSequenceNotes(w http.ResponseWriter, r *http.Request) {
	seq, ok := s.lookupSequence(w, r)
	if !ok {
		return
	}

	var input model.NotesRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("could not decode request body: %w", err))
		return
	}

	c, err := seq.ChordAt(input.Position)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, notesResponse(c, input.Pitches))
}

func (s *server) handleTrackChord(w http.ResponseWriter, r *http.Request) {
	if s.tracks == nil {
		writeError(w, statusFor(errTracksDisabled), errTracksDisabled)
		return
	}
	track := mux.Vars(r)["track"]
	position, err := positionParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cols, err := s.tracks.GetAnnotations(track)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if cols.Len() == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no annotations for track %q", track))
		return
	}

	seq, err := cols.Sequence()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	c, err := seq.ChordAt(position)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chordResponse(c))
}

func (s *server) handlePutTrack(w http.ResponseWriter, r *http.Request) {
	if s.tracks == nil {
		writeError(w, statusFor(errTracksDisabled), errTracksDisabled)
		return
	}
	track := mux.Vars(r)["track"]

	cols, seq, err := readAnnotations(r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	if err := s.tracks.PutAnnotations(track, cols); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("stored track annotations", "track", track, "intervals", seq.Len())
	writeJSON(w, http.StatusOK, model.SequenceCreatedResponse{Id: track, Intervals: seq.Len()})
}

func newServer() (*server, error) {
	store := newSequenceStore(filepath.Join(constants.GetIndexDir(), constants.SnapshotFilename))
	if err := store.loadSnapshot(); err != nil {
		return nil, err
	}

	s := &server{store: store}
	if endpoint := constants.GetDynamoEndpoint(); endpoint != "" {
		tracks, err := db.NewStore(endpoint, constants.GetDynamoRegion(), constants.GetDynamoTable())
		if err != nil {
			return nil, err
		}
		s.tracks = tracks
	}
	return s, nil
}

// NewHandler builds the handler serve listens with, restoring any snapshot
// under $INDEX_PATH.
func NewHandler() (http.Handler, error) {
	s, err := newServer()
	if err != nil {
		return nil, err
	}
	return newRouter(s), nil
}

func serve(ctx context.Context) error {
	s, err := newServer()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + constants.GetPort(),
		Handler:           newRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr, "tracks", s.tracks != nil)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	// pending debounced writes would be lost on exit
	s.store.writeSnapshot()
	return err
}
