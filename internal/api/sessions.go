package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/skener/internal/decoder"
	"github.com/erazemk/skener/internal/model"
	"github.com/erazemk/skener/internal/scan"
	"github.com/erazemk/skener/internal/store"
)

// SessionsHandler exposes scanning sessions. A session belongs to the user who
// started it; managers and admins may act on any session.
type SessionsHandler struct {
	Sessions *scan.Manager
}

type startSessionRequest struct {
	TransactionType string `json:"transaction_type"`
}

type scanRequest struct {
	Text       string `json:"text"`
	Format     string `json:"format"`
	SymbolType string `json:"symbol_type"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type editItemRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type cameraRequest struct {
	DeviceID string `json:"device_id"`
}

type sessionView struct {
	ID        string           `json:"id"`
	Owner     int64            `json:"owner"`
	CreatedAt time.Time        `json:"created_at"`
	Draft     scan.Draft       `json:"draft"`
	Camera    scan.CameraState `json:"camera"`
}

func viewOf(s *scan.Session) sessionView {
	return sessionView{
		ID:        s.ID,
		Owner:     s.Owner,
		CreatedAt: s.CreatedAt,
		Draft:     s.Snapshot(),
		Camera:    s.Camera(),
	}
}

// sessionError maps pipeline and store errors to HTTP responses.
func sessionError(w http.ResponseWriter, err error) {
	var verr *scan.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"error":        "draft is invalid",
			"field_errors": verr.FieldErrors,
		})
	case errors.Is(err, scan.ErrSessionNotFound), errors.Is(err, scan.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scan.ErrSessionClosed):
		jsonError(w, http.StatusGone, err.Error())
	case errors.Is(err, scan.ErrInvalidField), errors.Is(err, store.ErrInvalidTransaction):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scan.ErrNoCamera), errors.Is(err, decoder.ErrNoDevices),
		errors.Is(err, decoder.ErrDeviceUnavailable), errors.Is(err, store.ErrIncompatible),
		errors.Is(err, store.ErrDuplicateReference), errors.Is(err, store.ErrProductNotFound):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("session operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// session loads the {id} session and checks the caller may use it.
func (h *SessionsHandler) session(w http.ResponseWriter, r *http.Request) (*scan.Session, bool) {
	s, err := h.Sessions.Get(r.PathValue("id"))
	if err != nil {
		sessionError(w, err)
		return nil, false
	}
	claims := GetClaims(r.Context())
	if claims == nil || (s.Owner != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleManager)) {
		jsonError(w, http.StatusForbidden, "not your session")
		return nil, false
	}
	return s, true
}

// Start handles POST /api/sessions.
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TransactionType == "" {
		jsonError(w, http.StatusBadRequest, "transaction_type required")
		return
	}

	s, err := h.Sessions.Start(r.Context(), req.TransactionType, GetClaims(r.Context()).UserID)
	if err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, viewOf(s))
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, viewOf(s))
}

// Close handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Close(s.ID); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, message{"session closed"})
}

// SetType handles PUT /api/sessions/{id}/type.
func (h *SessionsHandler) SetType(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil || req.TransactionType == "" {
		jsonError(w, http.StatusBadRequest, "transaction_type required")
		return
	}
	if err := s.SetTransactionType(req.TransactionType); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, viewOf(s))
}

// UpdateHeader handles PUT /api/sessions/{id}/header.
func (h *SessionsHandler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req scan.Header
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.UpdateHeader(req); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, viewOf(s))
}

// Scan handles POST /api/sessions/{id}/scans with already-decoded symbol text.
func (h *SessionsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		jsonError(w, http.StatusBadRequest, "text required")
		return
	}

	typ := decoder.SymbolType(req.SymbolType)
	if typ == "" {
		typ = decoder.SymbolQR
		if req.Format != "" && req.Format != "QR_CODE" {
			typ = decoder.SymbolBarcode
		}
	}

	res := s.Scan(r.Context(), scan.Event{SymbolType: typ, RawText: req.Text, Format: req.Format})
	jsonResponse(w, http.StatusOK, res)
}

// SetQuantity handles PUT /api/sessions/{id}/items/{localID}/quantity.
func (h *SessionsHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removed, err := s.SetQuantity(r.PathValue("localID"), req.Quantity)
	if err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"removed": removed, "draft": s.Snapshot()})
}

// EditItem handles PUT /api/sessions/{id}/items/{localID}.
func (h *SessionsHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req editItemRequest
	if err := decodeJSON(r, &req); err != nil || req.Field == "" {
		jsonError(w, http.StatusBadRequest, "field required")
		return
	}
	if err := s.EditItem(r.PathValue("localID"), req.Field, req.Value); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.Snapshot())
}

// RemoveItem handles DELETE /api/sessions/{id}/items/{localID}.
func (h *SessionsHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.RemoveItem(r.PathValue("localID")); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.Snapshot())
}

// Validate handles GET /api/sessions/{id}/validation.
func (h *SessionsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res := s.Validate()
	jsonResponse(w, http.StatusOK, map[string]any{"valid": res.OK(), "field_errors": res.FieldErrors})
}

// Submit handles POST /api/sessions/{id}/submit.
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	tx, err := s.Submit(r.Context())
	if err != nil {
		sessionError(w, err)
		return
	}
	slog.Info("transaction created", "user", GetClaims(r.Context()).Username,
		"type", tx.TransactionType, "reference", tx.ReferenceNo, "items", len(tx.Items))
	jsonResponse(w, http.StatusCreated, tx)
}

// History handles GET /api/sessions/{id}/history.
func (h *SessionsHandler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			jsonError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	jsonResponse(w, http.StatusOK, s.History(n))
}

// ClearHistory handles DELETE /api/sessions/{id}/history.
func (h *SessionsHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.ClearHistory()
	jsonResponse(w, http.StatusOK, message{"history cleared"})
}

// StartCamera handles PUT /api/sessions/{id}/camera: starts the camera or
// switches it to another device.
func (h *SessionsHandler) StartCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req cameraRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.StartCamera(r.Context(), req.DeviceID); err != nil {
		sessionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.Camera())
}

// StopCamera handles DELETE /api/sessions/{id}/camera.
func (h *SessionsHandler) StopCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.StopCamera()
	jsonResponse(w, http.StatusOK, s.Camera())
}
