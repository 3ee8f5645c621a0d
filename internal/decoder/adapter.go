package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the minimum time between two decode attempts.
const DefaultInterval = time.Second

// Adapter runs a decode loop over one camera device at a time and reports each
// decoded symbol through a callback.
type Adapter struct {
	camera   Camera
	decoder  Decoder
	onSymbol func(Symbol)
	onError  func(error)
	interval time.Duration
	now      func() time.Time

	ctl sync.Mutex // serializes Start and Stop

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithInterval sets the minimum time between decode attempts. Frames arriving
// sooner are dropped undecoded.
func WithInterval(d time.Duration) Option {
	return func(a *Adapter) { a.interval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithErrorHandler is called once when a running device fails. The loop has
// already stopped when it runs.
func WithErrorHandler(fn func(error)) Option {
	return func(a *Adapter) { a.onError = fn }
}

// NewAdapter returns a stopped adapter.
func NewAdapter(camera Camera, dec Decoder, onSymbol func(Symbol), opts ...Option) *Adapter {
	a := &Adapter{
		camera:   camera,
		decoder:  dec,
		onSymbol: onSymbol,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListDevices returns the camera's video inputs.
func (a *Adapter) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	devices, err := a.camera.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// Active returns the streaming device id, or "" when stopped.
func (a *Adapter) Active() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Start begins decoding from deviceID, or from the first device when it is
// empty. Starting the device that is already streaming is a no-op; starting
// another one stops the current loop first.
func (a *Adapter) Start(ctx context.Context, deviceID string) error {
	a.ctl.Lock()
	defer a.ctl.Unlock()

	devices, err := a.ListDevices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevices
	}
	if deviceID == "" {
		deviceID = devices[0].ID
	}

	if a.Active() == deviceID {
		return nil
	}
	a.stop()

	stream, err := a.camera.Open(ctx, deviceID)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, deviceID, err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	a.mu.Lock()
	a.active, a.cancel, a.done = deviceID, cancel, done
	a.mu.Unlock()

	go func() {
		err := a.run(loopCtx, stream)
		stream.Close()

		a.mu.Lock()
		if a.done == done {
			a.active, a.cancel, a.done = "", nil, nil
		}
		a.mu.Unlock()
		cancel()
		close(done)

		if err != nil {
			slog.Error("camera stopped", "device", deviceID, "error", err)
			if a.onError != nil {
				a.onError(err)
			}
		}
	}()

	slog.Info("camera started", "device", deviceID)
	return nil
}

// SwitchDevice moves the loop to another device.
func (a *Adapter) SwitchDevice(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("%w: empty device id", ErrDeviceUnavailable)
	}
	return a.Start(ctx, deviceID)
}

// Stop cancels the decode loop and waits for it to exit. Stopping a stopped
// adapter does nothing.
func (a *Adapter) Stop() {
	a.ctl.Lock()
	defer a.ctl.Unlock()
	a.stop()
}

func (a *Adapter) stop() {
	a.mu.Lock()
	cancel, done, device := a.cancel, a.done, a.active
	a.active, a.cancel, a.done = "", nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("camera stopped", "device", device)
}

func (a *Adapter) run(ctx context.Context, stream Stream) error {
	var last time.Time
	for {
		img, err := stream.Next(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrDeviceUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}

		now := a.now()
		if !last.IsZero() && now.Sub(last) < a.interval {
			continue
		}
		last = now

		sym, err := a.decoder.Decode(img)
		if errors.Is(err, ErrNoSymbol) {
			continue
		}
		if err != nil {
			slog.Debug("decode failed", "error", err)
			continue
		}
		if sym.At.IsZero() {
			sym.At = now
		}
		a.onSymbol(sym)
	}
}
