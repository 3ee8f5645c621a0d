package decoder

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func TestFeedCameraRegister(t *testing.T) {
	cam := NewFeedCamera(0)
	a := cam.Register("", "Phone")
	if a.ID == "" {
		t.Fatal("expected generated id")
	}
	cam.Register("dock", "Dock")
	cam.Register("dock", "Dock scanner")

	devices, err := cam.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].ID != a.ID || devices[1].Label != "Dock scanner" {
		t.Errorf("unexpected devices: %+v", devices)
	}
}

func TestFeedCameraBusy(t *testing.T) {
	cam := NewFeedCamera(1)
	cam.Register("dock", "")
	ctx := context.Background()

	s, err := cam.Open(ctx, "dock")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := cam.Open(ctx, "dock"); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected busy device to be unavailable, got %v", err)
	}
	s.Close()
	s.Close()

	s, err = cam.Open(ctx, "dock")
	if err != nil {
		t.Fatalf("Open after close: %v", err)
	}
	s.Close()

	if _, err := cam.Open(ctx, "missing"); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected unknown device to be unavailable, got %v", err)
	}
}

func TestFeedCameraKeepsLatestFrames(t *testing.T) {
	cam := NewFeedCamera(2)
	cam.Register("dock", "")
	ctx := context.Background()

	s, err := cam.Open(ctx, "dock")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	frames := make([]image.Image, 4)
	for i := range frames {
		frames[i] = image.NewGray(image.Rect(0, 0, i+1, 1))
		if err := cam.Push("dock", frames[i]); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	for _, want := range frames[2:] {
		got, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got.Bounds().Dx() != want.Bounds().Dx() {
			t.Errorf("expected frame of width %d, got %d", want.Bounds().Dx(), got.Bounds().Dx())
		}
	}
}

func TestFeedCameraPushUnknown(t *testing.T) {
	cam := NewFeedCamera(1)
	if err := cam.Push("nope", image.NewGray(image.Rect(0, 0, 1, 1))); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("expected ErrUnknownDevice, got %v", err)
	}
}

func TestFeedCameraUnregisterEndsStream(t *testing.T) {
	cam := NewFeedCamera(1)
	cam.Register("dock", "")

	s, err := cam.Open(context.Background(), "dock")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if !cam.Unregister("dock") {
		t.Fatal("expected Unregister to report removal")
	}
	if cam.Unregister("dock") {
		t.Error("second Unregister should report false")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestFeedCameraNextHonoursContext(t *testing.T) {
	cam := NewFeedCamera(1)
	cam.Register("dock", "")
	s, err := cam.Open(context.Background(), "dock")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
