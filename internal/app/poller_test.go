package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/five82/skipper/internal/printer"
	"github.com/five82/skipper/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 70; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeDevice struct {
	status    *printer.StatusResponse
	statusErr error
	meta      *printer.SkipMetadata
	metaErr   error
	metaCalls []string
}

func (f *fakeDevice) FetchStatus(context.Context) (*printer.StatusResponse, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	s := *f.status
	return &s, nil
}

func (f *fakeDevice) FetchSkipMetadata(_ context.Context, filename string) (*printer.SkipMetadata, error) {
	f.metaCalls = append(f.metaCalls, filename)
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeDevice) OpenPickImage(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDevice) ApplySkip(context.Context, printer.SkipCommand) error {
	return nil
}

func TestPoller_FetchesMetadataOncePerFile(t *testing.T) {
	store := &state.Store{}
	dev := &fakeDevice{
		status: &printer.StatusResponse{GcodeFile: "plate_1.gcode"},
		meta:   &printer.SkipMetadata{Plates: []printer.PlateMetadata{{Index: 1}}},
	}
	p := NewPoller(store, dev, time.Second, time.Minute)

	p.refresh(context.Background())
	p.refresh(context.Background())
	if len(dev.metaCalls) != 1 {
		t.Fatalf("metadata calls = %v, want 1", dev.metaCalls)
	}
	snap := store.Snapshot()
	if snap.Metadata == nil || snap.MetadataFile != "plate_1.gcode" || snap.MetadataVersion != 1 {
		t.Fatalf("snapshot metadata = %v file=%q v%d", snap.Metadata, snap.MetadataFile, snap.MetadataVersion)
	}

	dev.status.GcodeFile = "plate_2.gcode"
	p.refresh(context.Background())
	if len(dev.metaCalls) != 2 || dev.metaCalls[1] != "plate_2.gcode" {
		t.Fatalf("metadata calls = %v, want refetch for plate_2", dev.metaCalls)
	}
}

func TestPoller_MetadataCooldownAfterFailure(t *testing.T) {
	store := &state.Store{}
	dev := &fakeDevice{
		status:  &printer.StatusResponse{GcodeFile: "a.gcode"},
		metaErr: errors.New("503"),
	}
	p := NewPoller(store, dev, time.Second, 10*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.refresh(context.Background())
	p.refresh(context.Background())
	if len(dev.metaCalls) != 1 {
		t.Fatalf("metadata calls during cool-down = %d, want 1", len(dev.metaCalls))
	}
	if store.Snapshot().MetadataError == nil {
		t.Fatalf("MetadataError = nil, want recorded failure")
	}

	now = now.Add(11 * time.Second)
	dev.metaErr = nil
	dev.meta = &printer.SkipMetadata{}
	p.refresh(context.Background())
	if len(dev.metaCalls) != 2 {
		t.Fatalf("metadata calls after cool-down = %d, want 2", len(dev.metaCalls))
	}
	if snap := store.Snapshot(); snap.Metadata == nil || snap.MetadataError != nil {
		t.Fatalf("snapshot after retry: meta=%v err=%v", snap.Metadata, snap.MetadataError)
	}
}

func TestPoller_StatusFailureCountsAndSkipsMetadata(t *testing.T) {
	store := &state.Store{}
	dev := &fakeDevice{statusErr: errors.New("connection refused")}
	p := NewPoller(store, dev, 0, 0)

	p.refresh(context.Background())
	p.refresh(context.Background())
	if p.failures != 2 {
		t.Fatalf("failures = %d, want 2", p.failures)
	}
	if !store.Snapshot().IsOffline() {
		t.Fatalf("store not offline after 2 failures")
	}
	if len(dev.metaCalls) != 0 {
		t.Fatalf("metadata fetched without status")
	}
	if p.interval != defaultPollInterval || p.metadataRetry != defaultMetadataRetry {
		t.Fatalf("defaults not applied: %v %v", p.interval, p.metadataRetry)
	}
}
