package state

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/five82/skipper/internal/printer"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Status              printer.StatusResponse
	HasStatus           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive status poll failures

	// Skip-object metadata for MetadataFile. MetadataVersion increases on
	// every successful fetch so consumers can detect replacement.
	Metadata        *printer.SkipMetadata
	MetadataFile    string
	MetadataVersion uint64
	MetadataError   error
}

// IsOffline returns true when the printer has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records a status poll. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(status *printer.StatusResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.Status = cloneStatus(*status)
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// UpdateMetadata records a metadata fetch for file. On error any metadata
// held for a different file is dropped; metadata for the same file is kept.
func (s *Store) UpdateMetadata(file string, meta *printer.SkipMetadata, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file = strings.TrimSpace(file)
	if err != nil {
		s.snapshot.MetadataError = err
		if s.snapshot.MetadataFile != file {
			s.snapshot.Metadata = nil
			s.snapshot.MetadataFile = file
			s.snapshot.MetadataVersion++
		}
		return
	}
	s.snapshot.Metadata = cloneMetadata(meta)
	s.snapshot.MetadataFile = file
	s.snapshot.MetadataError = nil
	s.snapshot.MetadataVersion++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status = cloneStatus(s.snapshot.Status)
	snap.Metadata = cloneMetadata(s.snapshot.Metadata)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	if s.snapshot.MetadataError != nil {
		snap.MetadataError = fmt.Errorf("%w", s.snapshot.MetadataError)
	}
	return snap
}

func cloneStatus(status printer.StatusResponse) printer.StatusResponse {
	status.SkippedObjects = slices.Clone(status.SkippedObjects)
	return status
}

func cloneMetadata(meta *printer.SkipMetadata) *printer.SkipMetadata {
	if meta == nil {
		return nil
	}
	dup := *meta
	dup.PlateFiles = slices.Clone(meta.PlateFiles)
	if meta.DefaultPlateIndex != nil {
		idx := *meta.DefaultPlateIndex
		dup.DefaultPlateIndex = &idx
	}
	if meta.Plates != nil {
		dup.Plates = make([]printer.PlateMetadata, len(meta.Plates))
		for i, plate := range meta.Plates {
			plate.Objects = slices.Clone(plate.Objects)
			plate.PlateFiles = slices.Clone(plate.PlateFiles)
			dup.Plates[i] = plate
		}
	}
	if meta.SkipObject != nil {
		so := *meta.SkipObject
		so.Plates = slices.Clone(meta.SkipObject.Plates)
		dup.SkipObject = &so
	}
	return &dup
}
