package printer

import (
	"strings"
	"time"
)

// Print states reported in StatusResponse.GcodeState.
const (
	StateIdle     = "IDLE"
	StatePrepare  = "PREPARE"
	StateRunning  = "RUNNING"
	StatePause    = "PAUSE"
	StateFinished = "FINISH"
	StateFailed   = "FAILED"
)

// StatusResponse mirrors the payload returned by /api/status.
type StatusResponse struct {
	GcodeFile      string `json:"gcode_file"`
	SubtaskName    string `json:"subtask_name"`
	GcodeState     string `json:"gcode_state"`
	Percent        int    `json:"mc_percent"`
	LayerNum       int    `json:"layer_num"`
	TotalLayerNum  int    `json:"total_layer_num"`
	RemainingMin   int    `json:"mc_remaining_time"`
	SkippedObjects []int  `json:"skipped_objects"`
}

// IsPrinting reports whether a job is active on the printer.
func (s StatusResponse) IsPrinting() bool {
	switch strings.ToUpper(strings.TrimSpace(s.GcodeState)) {
	case StateRunning, StatePause, StatePrepare:
		return true
	}
	return false
}

// Remaining returns the estimated remaining print time.
func (s StatusResponse) Remaining() time.Duration {
	if s.RemainingMin <= 0 {
		return 0
	}
	return time.Duration(s.RemainingMin) * time.Minute
}

// JobName prefers the slicer's subtask name over the raw gcode path.
func (s StatusResponse) JobName() string {
	if name := strings.TrimSpace(s.SubtaskName); name != "" {
		return name
	}
	return strings.TrimSpace(s.GcodeFile)
}

// SkipMetadata mirrors /api/skip-metadata for one print file.
type SkipMetadata struct {
	Plates            []PlateMetadata `json:"plates"`
	PlateFiles        []string        `json:"plate_files"`
	DefaultPlateIndex *int            `json:"default_plate_index"`
	SkipObject        *SkipObjectMeta `json:"skip_object"`
}

// PlateMetadata describes one sliced plate.
type PlateMetadata struct {
	Index      int            `json:"index"`
	Objects    []ObjectRecord `json:"objects"`
	PlateFiles []string       `json:"plate_files"`
}

// ObjectRecord is one printable object on a plate. ID matches the color
// encoded in the plate's pick-map.
type ObjectRecord struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	SkippedAtSource bool   `json:"skipped"`
}

// SkipObjectMeta carries the server's per-plate skip-object availability.
type SkipObjectMeta struct {
	Plates []SkipPlateEntry `json:"plates"`
}

// SkipPlateEntry is the server's view of one plate.
type SkipPlateEntry struct {
	Index     int    `json:"index"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
	PickURL   string `json:"pick_url"`
}

// SkipCommand is the body POSTed to /api/skip-objects.
type SkipCommand struct {
	ObjList    []int  `json:"obj_list"`
	SequenceID string `json:"sequence_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}
