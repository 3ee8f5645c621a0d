// Package decoder turns camera frames into decoded QR and barcode symbols.
package decoder

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrNoSymbol means a frame held nothing readable. It is noise, not a failure.
	ErrNoSymbol = errors.New("no symbol in frame")

	// ErrNoDevices means the camera reported no video inputs.
	ErrNoDevices = errors.New("no video devices")

	// ErrDeviceUnavailable means a device could not be opened or stopped
	// delivering frames (denied, busy or gone).
	ErrDeviceUnavailable = errors.New("video device unavailable")
)

// SymbolType distinguishes 2D codes from linear barcodes.
type SymbolType string

const (
	SymbolQR      SymbolType = "qr"
	SymbolBarcode SymbolType = "barcode"
)

// Symbol is one decoded code.
type Symbol struct {
	Type   SymbolType `json:"type"`
	Text   string     `json:"text"`
	Format string     `json:"format"`
	At     time.Time  `json:"at"`
}

// DeviceInfo describes a video input.
type DeviceInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Camera enumerates and opens video inputs.
type Camera interface {
	Devices(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, deviceID string) (Stream, error)
}

// Stream delivers frames from an opened device until closed.
type Stream interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Decoder reads a single symbol from a frame, returning ErrNoSymbol when there
// is none.
type Decoder interface {
	Decode(img image.Image) (Symbol, error)
}
