package decoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownDevice is returned when pushing to a device that was never registered.
var ErrUnknownDevice = errors.New("unknown device")

// DefaultFeedBuffer is the number of frames a FeedCamera device queues.
const DefaultFeedBuffer = 2

// FeedCamera is a Camera whose frames are pushed in by clients, typically
// uploaded over HTTP from a phone or handheld. When a device's buffer is full
// the oldest frame is dropped, so a slow decoder always sees recent frames.
type FeedCamera struct {
	buffer int

	mu      sync.Mutex
	devices map[string]*feed
	order   []string
}

type feed struct {
	info   DeviceInfo
	frames chan image.Image
	gone   chan struct{}
	busy   bool
}

// NewFeedCamera returns a camera with no devices. buffer <= 0 uses DefaultFeedBuffer.
func NewFeedCamera(buffer int) *FeedCamera {
	if buffer <= 0 {
		buffer = DefaultFeedBuffer
	}
	return &FeedCamera{buffer: buffer, devices: make(map[string]*feed)}
}

// Register adds a device. An empty id gets a generated one; registering an
// existing id only updates its label.
func (c *FeedCamera) Register(id, label string) DeviceInfo {
	if id == "" {
		id = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.devices[id]; ok {
		if label != "" {
			f.info.Label = label
		}
		return f.info
	}
	f := &feed{
		info:   DeviceInfo{ID: id, Label: label},
		frames: make(chan image.Image, c.buffer),
		gone:   make(chan struct{}),
	}
	c.devices[id] = f
	c.order = append(c.order, id)
	return f.info
}

// Unregister removes a device. A stream open on it fails with ErrDeviceUnavailable.
func (c *FeedCamera) Unregister(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.devices[id]
	if !ok {
		return false
	}
	close(f.gone)
	delete(c.devices, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Push queues a frame for a device.
func (c *FeedCamera) Push(id string, img image.Image) error {
	c.mu.Lock()
	f, ok := c.devices[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}

	for {
		select {
		case f.frames <- img:
			return nil
		default:
		}
		select {
		case <-f.frames:
		default:
		}
	}
}

// Devices implements Camera.
func (c *FeedCamera) Devices(ctx context.Context) ([]DeviceInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]DeviceInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.devices[id].info)
	}
	return out, nil
}

// Open implements Camera. A device serves one stream at a time.
func (c *FeedCamera) Open(ctx context.Context, id string) (Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrDeviceUnavailable, id)
	}
	if f.busy {
		return nil, fmt.Errorf("%w: %s is busy", ErrDeviceUnavailable, id)
	}
	f.busy = true

	// Frames pushed before anyone was watching are stale.
	for len(f.frames) > 0 {
		<-f.frames
	}
	return &feedStream{camera: c, feed: f}, nil
}

type feedStream struct {
	camera *FeedCamera
	feed   *feed
	once   sync.Once
}

func (s *feedStream) Next(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.feed.gone:
		return nil, fmt.Errorf("%w: %s was unregistered", ErrDeviceUnavailable, s.feed.info.ID)
	case img := <-s.feed.frames:
		return img, nil
	}
}

func (s *feedStream) Close() error {
	s.once.Do(func() {
		s.camera.mu.Lock()
		s.feed.busy = false
		s.camera.mu.Unlock()
	})
	return nil
}
