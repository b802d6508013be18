package skip

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/five82/skipper/internal/printer"
)

// ObjectState is the per-object selection state shown to the operator.
type ObjectState int

const (
	ObjectAvailable ObjectState = iota
	ObjectSelected
	ObjectSkipped
)

func (s ObjectState) String() string {
	switch s {
	case ObjectSelected:
		return "selected"
	case ObjectSkipped:
		return "skipped"
	default:
		return "available"
	}
}

// Engine owns the skipped and pending object sets for one plate. Skipped
// mirrors the device; pending is the operator's unconfirmed selection. The
// two sets never intersect, and pending never grows so large that no object
// would keep printing. Engine is not safe for concurrent use.
type Engine struct {
	plate   *printer.PlateMetadata
	objects map[int]struct{}
	skipped map[int]struct{}
	pending map[int]struct{}
}

// NewEngine returns an engine with no plate loaded.
func NewEngine() *Engine {
	return &Engine{
		objects: map[int]struct{}{},
		skipped: map[int]struct{}{},
		pending: map[int]struct{}{},
	}
}

// PlateChanged loads a new plate, clears pending and reseeds skipped from
// the device list and source-skipped objects.
func (e *Engine) PlateChanged(plate *printer.PlateMetadata, deviceSkipped []int) {
	e.plate = plate
	e.pending = map[int]struct{}{}
	if plate == nil {
		e.objects = map[int]struct{}{}
		e.skipped = map[int]struct{}{}
		return
	}
	e.objects = objectIDs(plate)
	e.skipped = seedSkipped(plate, e.objects, deviceSkipped)
}

// DeviceSkippedUpdated replaces skipped with the device's list and prunes
// any pending ID that the device now reports skipped.
func (e *Engine) DeviceSkippedUpdated(deviceSkipped []int) {
	if e.plate == nil {
		return
	}
	e.skipped = seedSkipped(e.plate, e.objects, deviceSkipped)
	e.prunePending()
}

// Toggle flips id in the pending set. Already-skipped and unknown IDs are
// ignored. Adding an ID that would leave no object printing fails with
// ErrSelectionInvalid and leaves state unchanged.
func (e *Engine) Toggle(id int) error {
	if !e.Has(id) {
		return nil
	}
	if _, ok := e.skipped[id]; ok {
		return nil
	}
	if _, ok := e.pending[id]; ok {
		delete(e.pending, id)
		return nil
	}
	if e.remainingAfter(len(e.pending)+1) < 1 {
		return ErrSelectionInvalid
	}
	e.pending[id] = struct{}{}
	return nil
}

// ClearPending drops the operator's selection.
func (e *Engine) ClearPending() {
	e.pending = map[int]struct{}{}
}

// Committed folds successfully dispatched IDs into skipped.
func (e *Engine) Committed(ids []int) {
	for _, id := range ids {
		if !e.Has(id) {
			continue
		}
		e.skipped[id] = struct{}{}
		delete(e.pending, id)
	}
	e.prunePending()
}

// Commit sends the pending selection through apply and, on success, moves
// it into skipped. On failure pending is left untouched.
func (e *Engine) Commit(ctx context.Context, apply func(ctx context.Context, ids []int) error) error {
	ids := e.Pending()
	if len(ids) == 0 {
		return ErrNothingPending
	}
	if err := apply(ctx, ids); err != nil {
		return err
	}
	e.Committed(ids)
	e.ClearPending()
	return nil
}

// Has reports whether id belongs to the loaded plate.
func (e *Engine) Has(id int) bool {
	_, ok := e.objects[id]
	return ok
}

// State returns the selection state of id.
func (e *Engine) State(id int) ObjectState {
	if _, ok := e.skipped[id]; ok {
		return ObjectSkipped
	}
	if _, ok := e.pending[id]; ok {
		return ObjectSelected
	}
	return ObjectAvailable
}

// Pending returns the sorted pending IDs.
func (e *Engine) Pending() []int {
	return slices.Sorted(maps.Keys(e.pending))
}

// Skipped returns the sorted skipped IDs.
func (e *Engine) Skipped() []int {
	return slices.Sorted(maps.Keys(e.skipped))
}

// Total returns the number of objects on the plate.
func (e *Engine) Total() int {
	return len(e.objects)
}

// Remaining returns how many objects keep printing if pending is applied.
func (e *Engine) Remaining() int {
	return e.remainingAfter(len(e.pending))
}

// CanApply reports whether the pending selection is non-empty and valid.
func (e *Engine) CanApply() bool {
	return len(e.pending) > 0 && e.Remaining() >= 1
}

// Validate checks the set invariants; it is used by tests and debug logging.
func (e *Engine) Validate() error {
	for id := range e.pending {
		if _, ok := e.skipped[id]; ok {
			return fmt.Errorf("object %d is both pending and skipped", id)
		}
	}
	if len(e.pending) > 0 && e.Remaining() < 1 {
		return fmt.Errorf("pending selection leaves %d objects printing", e.Remaining())
	}
	return nil
}

func (e *Engine) remainingAfter(pending int) int {
	return len(e.objects) - len(e.skipped) - pending
}

func (e *Engine) prunePending() {
	for id := range e.pending {
		if _, ok := e.skipped[id]; ok {
			delete(e.pending, id)
		}
	}
}
