// Package workflow orchestrates one identification session: image submission,
// canonical English info caching, on-demand translation and speech synthesis,
// report export, and history persistence. It keeps four pieces of state
// consistent under repeated user actions and partial failures: the uploaded
// image, the canonical English info, the displayed (possibly translated)
// info, and the audio payload.
package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/plantinfo"
	"github.com/leaflens/leaflens/internal/report"
	"github.com/leaflens/leaflens/internal/session"
	"go.uber.org/zap"
)

// State names the workflow's position in its loop.
type State int

const (
	// StateIdle means no image is selected.
	StateIdle State = iota
	// StateUploading marks an identify call in flight.
	StateUploading
	// StateIdentified means a result is on display; secondary actions accept.
	StateIdentified
	// StateTranslating, StateSpeaking, and StateExporting mark secondary
	// actions in flight; every other call is rejected with ErrBusy.
	StateTranslating
	StateSpeaking
	StateExporting
)

func (s State) String() string {
	switch s {
	case StateUploading:
		return "uploading"
	case StateIdentified:
		return "identified"
	case StateTranslating:
		return "translating"
	case StateSpeaking:
		return "speaking"
	case StateExporting:
		return "exporting"
	}
	return "idle"
}

var (
	// ErrBusy rejects an operation attempted while another is in flight.
	// Overlapping identify/translate/speak calls would race on shared state,
	// so the state machine refuses them instead of interleaving.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoResult rejects secondary actions before a successful identify.
	ErrNoResult = errors.New("no identification result yet")
)

// Gateway is the slice of the backend client the workflow needs.
type Gateway interface {
	Identify(ctx context.Context, image []byte, filename, languageCode string) (models.IdentificationResult, error)
	Translate(ctx context.Context, info plantinfo.InfoMap, languageCode string) (plantinfo.InfoMap, bool)
	SynthesizeSpeech(ctx context.Context, info plantinfo.InfoMap, languageCode string) ([]byte, error)
	SaveHistory(ctx context.Context, sess models.Session, entry models.HistoryEntry) error
}

// Workflow owns the in-memory identification state for one session.
type Workflow struct {
	mu    sync.Mutex
	state State

	gw       Gateway
	sessions session.Store
	log      *zap.Logger

	entryID    string
	image      []byte
	filename   string
	imageURL   string
	plantName  string
	confidence float64
	language   string
	canonical  plantinfo.InfoMap
	displayed  plantinfo.InfoMap
	audio      []byte
	updatedAt  time.Time
}

// Snapshot is a read-only copy of the display state.
type Snapshot struct {
	State      State
	EntryID    string
	PlantName  string
	Confidence float64
	Language   string
	Info       plantinfo.InfoMap
	Audio      []byte
	ImageURL   string
	UpdatedAt  time.Time
}

// New builds an idle workflow.
func New(gw Gateway, sessions session.Store, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{state: StateIdle, gw: gw, sessions: sessions, log: log}
}

// begin moves into next if the current state is one of from, otherwise it
// reports ErrBusy. It returns the state to restore on failure.
func (w *Workflow) begin(next State, from ...State) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range from {
		if w.state == s {
			prev := w.state
			w.state = next
			return prev, nil
		}
	}
	return w.state, ErrBusy
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
}

// beginFromIdentified moves into next from Identified. From Idle there is
// nothing to operate on, so the caller gets ErrNoResult rather than ErrBusy.
func (w *Workflow) beginFromIdentified(next State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdentified:
		w.state = next
		return nil
	case StateIdle:
		return ErrNoResult
	default:
		return ErrBusy
	}
}

// SubmitImage uploads an image for identification, replacing all prior
// derived state on success. The canonical map is always the English copy:
// when languageCode is not "en" a second identify call with "en" fetches it,
// so translation always has a stable English source. If that second call
// fails the localized response stands in as canonical — an accepted
// approximation, not an error. A failed first call commits nothing; any
// prior result stays visible.
func (w *Workflow) SubmitImage(ctx context.Context, image []byte, filename, languageCode string) error {
	prev, err := w.begin(StateUploading, StateIdle, StateIdentified)
	if err != nil {
		return err
	}
	if languageCode == "" {
		languageCode = "en"
	}

	res, err := w.gw.Identify(ctx, image, filename, languageCode)
	if err != nil {
		w.setState(prev)
		return err
	}

	canonical := res.Info.Clone()
	if languageCode != "en" {
		english, err := w.gw.Identify(ctx, image, filename, "en")
		if err != nil {
			w.log.Warn("english identify failed, using localized info as canonical", zap.Error(err))
		} else {
			canonical = english.Info.Clone()
		}
	}

	var audio []byte
	if res.TTS != "" {
		audio, err = base64.StdEncoding.DecodeString(res.TTS)
		if err != nil {
			w.log.Warn("discarding undecodable audio from identify response", zap.Error(err))
			audio = nil
		}
	}

	w.mu.Lock()
	w.entryID = res.ID
	if w.entryID == "" {
		w.entryID = uuid.NewString()
	}
	w.image = image
	w.filename = filename
	w.imageURL = res.ImageURL
	w.plantName = res.PlantName
	w.confidence = res.Confidence
	w.language = languageCode
	w.canonical = canonical
	w.displayed = res.Info
	w.audio = audio
	w.updatedAt = time.Now()
	w.state = StateIdentified
	w.mu.Unlock()

	w.persist(ctx)
	return nil
}

// Translate replaces the displayed map with a translation of the canonical
// English copy. "en" restores the canonical copy without a network call.
// Whenever the displayed content changes, any previous audio payload is
// cleared: stale audio must never be presented alongside freshly translated
// text. Translation failures are swallowed per the gateway's fail-soft
// policy; the displayed map then stays on its previous value.
func (w *Workflow) Translate(ctx context.Context, languageCode string) error {
	if err := w.beginFromIdentified(StateTranslating); err != nil {
		return err
	}
	if languageCode == "" {
		languageCode = "en"
	}

	w.mu.Lock()
	if w.canonical.Len() == 0 {
		w.state = StateIdentified
		w.mu.Unlock()
		return ErrNoResult
	}
	if languageCode == w.language {
		w.state = StateIdentified
		w.mu.Unlock()
		return nil
	}
	canonical := w.canonical.Clone()
	w.mu.Unlock()

	var next plantinfo.InfoMap
	if languageCode == "en" {
		next = canonical
	} else {
		translated, ok := w.gw.Translate(ctx, canonical, languageCode)
		if !ok {
			// Fail-soft: keep the previous displayed map and audio.
			w.setState(StateIdentified)
			return nil
		}
		next = translated
	}

	w.mu.Lock()
	w.displayed = next
	w.language = languageCode
	w.audio = nil
	w.updatedAt = time.Now()
	w.state = StateIdentified
	w.mu.Unlock()

	w.persist(ctx)
	return nil
}

// Speak synthesizes audio for the currently displayed map in languageCode.
// Failure surfaces to the caller but keeps the previous audio, since the
// displayed text did not change.
func (w *Workflow) Speak(ctx context.Context, languageCode string) error {
	if err := w.beginFromIdentified(StateSpeaking); err != nil {
		return err
	}
	if languageCode == "" {
		languageCode = "en"
	}

	w.mu.Lock()
	displayed := w.displayed.Clone()
	w.mu.Unlock()

	audio, err := w.gw.SynthesizeSpeech(ctx, displayed, languageCode)
	if err != nil {
		w.setState(StateIdentified)
		return err
	}

	w.mu.Lock()
	w.audio = audio
	w.updatedAt = time.Now()
	w.state = StateIdentified
	w.mu.Unlock()

	w.persist(ctx)
	return nil
}

// ExportReport renders the displayed state into the given format. It is a
// pure transformation: no network call and no history persist. The rendered
// bytes and a suggested filename are returned.
func (w *Workflow) ExportReport(format report.Format, languageLabel string) ([]byte, string, error) {
	if err := w.beginFromIdentified(StateExporting); err != nil {
		return nil, "", err
	}
	defer w.setState(StateIdentified)

	w.mu.Lock()
	r := report.Report{
		PlantName:   w.plantName,
		Confidence:  w.confidence,
		Language:    languageLabel,
		GeneratedAt: time.Now(),
		ImageURL:    w.imageURL,
		Info:        w.displayed.Clone(),
	}
	name := w.plantName
	w.mu.Unlock()

	doc, err := r.Render(format)
	if err != nil {
		return nil, "", err
	}
	return doc, report.Filename(name, format), nil
}

// Clear resets the workflow to Idle, dropping the image and all derived
// state. Valid only while no operation is in flight.
func (w *Workflow) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdle, StateIdentified:
	default:
		return ErrBusy
	}
	w.state = StateIdle
	w.entryID = ""
	w.image = nil
	w.filename = ""
	w.imageURL = ""
	w.plantName = ""
	w.confidence = 0
	w.language = ""
	w.canonical = plantinfo.InfoMap{}
	w.displayed = plantinfo.InfoMap{}
	w.audio = nil
	w.updatedAt = time.Time{}
	return nil
}

// Snapshot returns a copy of the display state for rendering.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:      w.state,
		EntryID:    w.entryID,
		PlantName:  w.plantName,
		Confidence: w.confidence,
		Language:   w.language,
		Info:       w.displayed.Clone(),
		Audio:      append([]byte(nil), w.audio...),
		ImageURL:   w.imageURL,
		UpdatedAt:  w.updatedAt,
	}
}

// persist sends the entire current entry to the backend history — a full
// overwrite keyed by entry id, issued after every successful submit,
// translate, and speak. Save failures are logged, never fatal: the workflow,
// not the server's history, is the source of truth for current state.
func (w *Workflow) persist(ctx context.Context) {
	sess, ok := w.sessions.Get()
	if !ok {
		w.log.Debug("not signed in, skipping history save")
		return
	}

	w.mu.Lock()
	entry := models.HistoryEntry{
		ID:         w.entryID,
		UserID:     sess.Email,
		PlantName:  w.plantName,
		Confidence: w.confidence,
		ImageURL:   w.imageURL,
		Timestamp:  w.updatedAt.UTC().Format(time.RFC3339),
		Info:       w.displayed.Clone(),
	}
	if len(w.audio) > 0 {
		entry.TTS = base64.StdEncoding.EncodeToString(w.audio)
	}
	w.mu.Unlock()

	if err := w.gw.SaveHistory(ctx, sess, entry); err != nil {
		w.log.Warn("failed to save history entry", zap.String("id", entry.ID), zap.Error(err))
	}
}
