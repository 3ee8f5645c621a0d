package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/skener/internal/decoder"
	"github.com/erazemk/skener/internal/imaging"
)

// DevicesHandler manages client-fed cameras. A phone or handheld registers
// itself as a device and uploads frames; sessions decode them.
type DevicesHandler struct {
	Camera *decoder.FeedCamera
}

type registerDeviceRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// List handles GET /api/devices.
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Camera.Devices(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	jsonResponse(w, http.StatusOK, devices)
}

// Register handles POST /api/devices.
func (h *DevicesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jsonResponse(w, http.StatusCreated, h.Camera.Register(req.ID, req.Label))
}

// Unregister handles DELETE /api/devices/{id}.
func (h *DevicesHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	if !h.Camera.Unregister(r.PathValue("id")) {
		jsonError(w, http.StatusNotFound, "device not found")
		return
	}
	jsonResponse(w, http.StatusOK, message{"device removed"})
}

// PushFrame handles POST /api/devices/{id}/frames with a multipart "frame" image.
func (h *DevicesHandler) PushFrame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("frame")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "frame file required")
		return
	}
	defer file.Close()

	img, err := imaging.Frame(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Camera.Push(r.PathValue("id"), img); err != nil {
		if errors.Is(err, decoder.ErrUnknownDevice) {
			jsonError(w, http.StatusNotFound, "device not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to queue frame")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
