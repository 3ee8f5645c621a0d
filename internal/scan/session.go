package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/skener/internal/decoder"
	"github.com/erazemk/skener/internal/model"
)

var (
	// ErrSessionNotFound is returned for unknown or closed session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrNoCamera is returned when camera operations are used on a session
	// created without one.
	ErrNoCamera = errors.New("session has no camera")
)

// OutcomeStale marks a resolution discarded because the transaction type
// changed while it was in flight. Stale results are not logged.
const OutcomeStale = "stale"

// TransactionService persists a submitted draft.
type TransactionService interface {
	CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error)
}

// Config configures a Session.
type Config struct {
	TransactionType string
	Owner           int64

	// Products is the list already loaded for the session; lookups try it
	// before falling back to Catalog.
	Products     []model.Product
	Catalog      Catalog
	Transactions TransactionService

	// Loader, when set, refreshes Products after each successful submit.
	Loader ProductLoader
	Extractors   []Extractor

	Cooldown time.Duration
	Now      func() time.Time

	// Camera and Decoder enable camera-driven scanning. Both or neither.
	Camera         decoder.Camera
	Decoder        decoder.Decoder
	DecodeInterval time.Duration
}

// Result is the outcome of one scan passing through the pipeline.
type Result struct {
	Outcome   string         `json:"outcome"`
	Message   string         `json:"message"`
	RawText   string         `json:"raw_text"`
	Candidate string         `json:"candidate,omitempty"`
	Strategy  string         `json:"strategy,omitempty"`
	Product   *model.Product `json:"product,omitempty"`
	Admission *Admission     `json:"admission,omitempty"`
}

// CameraState reports the session camera.
type CameraState struct {
	Enabled   bool   `json:"enabled"`
	Device    string `json:"device,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Session assembles one draft transaction from a stream of scans. Resolution
// runs without the lock so lookups for different symbols may overlap; every
// draft mutation happens under mu.
type Session struct {
	ID        string
	Owner     int64
	CreatedAt time.Time

	dedup    *Deduplicator
	resolver *Resolver
	history  *FeedbackLog
	txs      TransactionService
	loader   ProductLoader
	now      func() time.Time
	camera   *decoder.Adapter
	inflight sync.WaitGroup

	mu         sync.Mutex
	draft      *Draft
	generation uint64
	products   []model.Product
	lastActive time.Time
	cameraErr  error
	closed     bool
}

// NewSession creates a session with an empty draft of cfg.TransactionType.
func NewSession(cfg Config) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	resolver := NewResolver(cfg.Catalog)
	if cfg.Extractors != nil {
		resolver.Extractors = cfg.Extractors
	}

	t := now()
	s := &Session{
		ID:         uuid.NewString(),
		Owner:      cfg.Owner,
		CreatedAt:  t,
		dedup:      NewDeduplicator(cfg.Cooldown),
		resolver:   resolver,
		history:    NewFeedbackLog(HistoryCapacity),
		txs:        cfg.Transactions,
		loader:     cfg.Loader,
		now:        now,
		draft:      NewDraft(cfg.TransactionType, t),
		products:   cfg.Products,
		lastActive: t,
	}

	if cfg.Camera != nil && cfg.Decoder != nil {
		opts := []decoder.Option{decoder.WithErrorHandler(s.cameraFailed)}
		if cfg.DecodeInterval > 0 {
			opts = append(opts, decoder.WithInterval(cfg.DecodeInterval))
		}
		s.camera = decoder.NewAdapter(cfg.Camera, cfg.Decoder, s.onSymbol, opts...)
	}
	return s
}

// Scan runs one event through deduplication, resolution, the transaction-type
// rules and aggregation, and records the outcome in the feedback log.
func (s *Session) Scan(ctx context.Context, ev Event) Result {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	res := Result{RawText: ev.RawText}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		res.Outcome, res.Message = OutcomeProcessingError, ErrSessionClosed.Error()
		return res
	}
	s.lastActive = s.now()
	gen := s.generation
	products := s.products
	s.mu.Unlock()

	if !s.dedup.Admit(ev) {
		res.Outcome, res.Message = OutcomeDuplicateSuppressed, "Already scanned"
		s.record(res, ev)
		slog.Debug("scan suppressed", "session", s.ID, "text", ev.RawText)
		return res
	}

	resolution, err := s.resolver.Resolve(ctx, products, ev.RawText)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.closed {
		res.Outcome = OutcomeStale
		slog.Debug("scan result discarded", "session", s.ID, "text", ev.RawText)
		return res
	}

	switch {
	case errors.Is(err, ErrNotFound):
		candidate, _ := ExtractCandidate(s.resolver.Extractors, ev.RawText)
		res.Outcome, res.Candidate = OutcomeNotFound, candidate
		res.Message = fmt.Sprintf("No product found for %q", candidate)
		s.record(res, ev)
		slog.Info("scan not found", "session", s.ID, "text", ev.RawText)
		return res
	case err != nil:
		res.Outcome = OutcomeProcessingError
		res.Message = fmt.Sprintf("Lookup failed: %v", err)
		s.record(res, ev)
		slog.Warn("scan lookup failed", "session", s.ID, "text", ev.RawText, "error", err)
		return res
	}

	p := resolution.Product
	res.Candidate, res.Strategy, res.Product = resolution.Candidate, resolution.Strategy, &p

	if v := Check(p, s.draft.TransactionType); !v.Allowed {
		res.Outcome, res.Message = OutcomeIncompatible, v.Reason
		s.record(res, ev)
		slog.Info("scan rejected", "session", s.ID, "product", p.ID, "reason", v.Reason)
		return res
	}

	adm := s.draft.AdmitScan(p)
	res.Outcome, res.Admission = OutcomeResolved, &adm
	if adm.Result == Created {
		res.Message = fmt.Sprintf("Added %s", displayName(p))
	} else {
		res.Message = fmt.Sprintf("%s quantity %d", displayName(p), adm.Line.Quantity)
	}
	s.record(res, ev)
	slog.Info("scan admitted", "session", s.ID, "product", p.ID, "source", resolution.Source, "result", adm.Result)
	return res
}

func displayName(p model.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func (s *Session) record(res Result, ev Event) {
	e := Entry{Kind: res.Outcome, Message: res.Message, RawText: ev.RawText, At: ev.Timestamp}
	if res.Product != nil {
		e.ProductID = res.Product.ID
	}
	s.history.Record(e)
}

// onSymbol is the camera callback. Each symbol resolves in its own goroutine
// so a slow lookup does not hold up the decode loop.
func (s *Session) onSymbol(sym decoder.Symbol) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.Scan(context.Background(), EventFromSymbol(sym))
	}()
}

func (s *Session) cameraFailed(err error) {
	s.mu.Lock()
	s.cameraErr = err
	s.mu.Unlock()
}

// StartCamera starts or switches the camera to deviceID ("" picks the first device).
func (s *Session) StartCamera(ctx context.Context, deviceID string) error {
	if s.camera == nil {
		return ErrNoCamera
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.cameraErr = nil
	s.lastActive = s.now()
	s.mu.Unlock()

	if err := s.camera.Start(ctx, deviceID); err != nil {
		s.cameraFailed(err)
		return err
	}

	// Close may have run while the camera was starting; its Stop found nothing
	// to stop, so the loop started here must not outlive the session.
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.camera.Stop()
		return ErrSessionClosed
	}
	return nil
}

// StopCamera stops the camera. Resolutions already in flight still complete.
func (s *Session) StopCamera() {
	if s.camera != nil {
		s.camera.Stop()
	}
}

// Camera reports the camera state.
func (s *Session) Camera() CameraState {
	if s.camera == nil {
		return CameraState{}
	}
	device := s.camera.Active()
	st := CameraState{Enabled: device != "", Device: device}
	s.mu.Lock()
	if s.cameraErr != nil {
		st.LastError = s.cameraErr.Error()
	}
	s.mu.Unlock()
	return st
}

// Devices lists the camera's video inputs.
func (s *Session) Devices(ctx context.Context) ([]decoder.DeviceInfo, error) {
	if s.camera == nil {
		return nil, ErrNoCamera
	}
	return s.camera.ListDevices(ctx)
}

// SetTransactionType switches the draft to another type. The items are
// dropped, a new reference number is issued and any resolution still in
// flight is discarded when it completes. The header is kept.
func (s *Session) SetTransactionType(txType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if !model.ValidTransactionType(txType) {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidField, txType)
	}
	s.lastActive = s.now()
	if txType == s.draft.TransactionType {
		return nil
	}

	next := NewDraft(txType, s.now())
	next.FirstPerson = s.draft.FirstPerson
	next.SecondPerson = s.draft.SecondPerson
	next.Location = s.draft.Location
	next.Notes = s.draft.Notes
	next.Status = s.draft.Status

	s.draft = next
	s.generation++
	s.dedup.Reset()
	slog.Info("transaction type changed", "session", s.ID, "type", txType)
	return nil
}

// UpdateHeader edits the draft header.
func (s *Session) UpdateHeader(h Header) error {
	return s.mutate(func(d *Draft) error { return d.ApplyHeader(h) })
}

// SetQuantity sets a line quantity; see Draft.SetQuantity.
func (s *Session) SetQuantity(localID string, qty int) (removed bool, err error) {
	err = s.mutate(func(d *Draft) error {
		removed, err = d.SetQuantity(localID, qty)
		return err
	})
	return removed, err
}

// RemoveItem deletes a line.
func (s *Session) RemoveItem(localID string) error {
	return s.mutate(func(d *Draft) error { return d.Remove(localID) })
}

// EditItem changes one field of a line.
func (s *Session) EditItem(localID, field, value string) error {
	return s.mutate(func(d *Draft) error { return d.EditField(localID, field, value) })
}

func (s *Session) mutate(fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.lastActive = s.now()
	return fn(s.draft)
}

// Snapshot returns a copy of the draft.
func (s *Session) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Validate checks the current draft.
func (s *Session) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Validate(*s.draft)
}

// History returns up to n feedback entries, newest first.
func (s *Session) History(n int) []Entry {
	return s.history.Recent(n, s.now())
}

// ClearHistory empties the feedback log.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// Submit validates the draft and hands it to the transaction service in one
// call. On failure the draft is left as it was so the user can retry; on
// success it is reset to an empty draft of the same type.
func (s *Session) Submit(ctx context.Context) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	s.lastActive = s.now()

	if v := Validate(*s.draft); !v.OK() {
		return nil, &ValidationError{FieldErrors: v.FieldErrors}
	}
	if s.txs == nil {
		return nil, errors.New("no transaction service configured")
	}

	req := BuildRequest(*s.draft, s.now())
	if s.Owner != 0 {
		owner := s.Owner
		req.CreatedBy = &owner
	}

	tx, err := s.txs.CreateTransaction(ctx, &req)
	if err != nil {
		slog.Warn("submit failed", "session", s.ID, "reference", req.ReferenceNo, "error", err)
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	s.draft = NewDraft(s.draft.TransactionType, s.now())
	slog.Info("transaction submitted", "session", s.ID, "reference", req.ReferenceNo, "items", len(req.Items))

	// The submit changed product state; a failed reload keeps the old list
	// and the store still re-checks every line.
	if s.loader != nil {
		products, err := s.loader.LoadProducts(ctx)
		if err != nil {
			slog.Warn("reloading products failed", "session", s.ID, "error", err)
		} else {
			s.products = products
		}
	}
	return tx, nil
}

// LastActive returns the time of the last operation on the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops the camera and waits for camera-driven resolutions to finish.
// Further operations fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.StopCamera()
	s.inflight.Wait()
}
