package skip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/skipper/internal/printer"
)

// PickStatus tracks the pick-map for the active plate.
type PickStatus int

const (
	PickNone PickStatus = iota
	PickLoading
	PickReady
	PickUnavailable
)

// Input is the printer state pushed into the controller.
type Input struct {
	Status          printer.StatusResponse
	Metadata        *printer.SkipMetadata
	MetadataVersion uint64
}

// Row is one entry of the object list.
type Row struct {
	ID    int
	Name  string
	State ObjectState
}

// Controller drives the skip-objects modal: it resolves the active plate,
// tracks the pick-map load, and routes clicks and list toggles into the
// selection engine. Callers push printer state in with Sync and run the
// returned pick loads and dispatches themselves.
type Controller struct {
	dispatcher *Dispatcher
	palette    Palette

	open     bool
	resolver Resolver
	res      Resolution
	plateKey string
	engine   *Engine

	pick       *PickMap
	pickURL    string
	pickStatus PickStatus
	pickErr    error
}

// NewController builds a closed controller.
func NewController(dispatcher *Dispatcher, palette Palette) *Controller {
	return &Controller{
		dispatcher: dispatcher,
		palette:    palette,
		engine:     NewEngine(),
		res:        Resolution{Selection: PlateSelection{PlateIndex: -1, ArrayIndex: -1}},
	}
}

// Open starts a modal session. The next Sync recomputes everything.
func (c *Controller) Open() {
	c.reset()
	c.open = true
}

// Close ends the session and discards the pick-map and selection. A dispatch
// already sent still completes through ApplyFinished.
func (c *Controller) Close() {
	c.engine.ClearPending()
	c.reset()
	c.open = false
}

// SetPalette changes the overlay colors used by Overlay.
func (c *Controller) SetPalette(p Palette) {
	c.palette = p
}

// IsOpen reports whether the modal is showing.
func (c *Controller) IsOpen() bool {
	return c.open
}

func (c *Controller) reset() {
	c.resolver.Reset()
	c.res = Resolution{Selection: PlateSelection{PlateIndex: -1, ArrayIndex: -1}}
	c.plateKey = ""
	c.engine = NewEngine()
	c.pick = nil
	c.pickURL = ""
	c.pickStatus = PickNone
	c.pickErr = nil
}

// Sync folds new printer state into the session. It returns the pick-map
// URL to load when the active plate needs one that is not loaded or loading.
func (c *Controller) Sync(in Input) string {
	if !c.open {
		return ""
	}
	res, changed := c.resolver.Resolve(in.Metadata, in.MetadataVersion, in.Status.GcodeFile, in.Status.SkippedObjects)
	if !changed {
		return ""
	}
	c.res = res

	key := fmt.Sprintf("%s|%d|%d", strings.TrimSpace(in.Status.GcodeFile), in.MetadataVersion, res.Selection.ArrayIndex)
	if key != c.plateKey {
		c.plateKey = key
		c.engine.PlateChanged(res.Selection.Plate, in.Status.SkippedObjects)
	} else {
		c.engine.DeviceSkippedUpdated(in.Status.SkippedObjects)
	}

	url := res.Availability.PickURL
	if url == c.pickURL {
		return ""
	}
	c.pick = nil
	c.pickErr = nil
	c.pickURL = url
	if url == "" {
		c.pickStatus = PickNone
		return ""
	}
	c.pickStatus = PickLoading
	return url
}

// PickLoaded records the result of a pick-map load. Results for URLs other
// than the current one are dropped.
func (c *Controller) PickLoaded(url string, pm *PickMap, err error) {
	if !c.open || url != c.pickURL {
		return
	}
	if err != nil || pm == nil {
		if err == nil {
			err = ErrPickMapDecodeFailed
		}
		c.pick = nil
		c.pickErr = err
		c.pickStatus = PickUnavailable
		return
	}
	c.pick = pm
	c.pickErr = nil
	c.pickStatus = PickReady
}

// PickMap returns the decoded map, or nil when none is loaded.
func (c *Controller) PickMap() *PickMap {
	return c.pick
}

// PickStatus returns the pick-map load state.
func (c *Controller) PickStatus() PickStatus {
	return c.pickStatus
}

// Availability returns the resolved availability of the active plate.
func (c *Controller) Availability() Availability {
	return c.res.Availability
}

// Selection returns the active plate selection.
func (c *Controller) Selection() PlateSelection {
	return c.res.Selection
}

// Engine exposes the selection engine for read-only inspection.
func (c *Controller) Engine() *Engine {
	return c.engine
}

// Toggle flips an object's pending state.
func (c *Controller) Toggle(id int) error {
	if !c.res.Availability.Available {
		return ErrNotAvailable
	}
	return c.engine.Toggle(id)
}

// ClearSelection drops all pending objects.
func (c *Controller) ClearSelection() {
	c.engine.ClearPending()
}

// Click hit-tests a pointer position and toggles the object under it.
// It returns the object ID, or 0 when nothing was hit.
func (c *Controller) Click(x, y float64, geom CanvasGeometry) (int, error) {
	id, ok := Locate(x, y, geom, c.pick)
	if !ok {
		return 0, nil
	}
	return id, c.Toggle(id)
}

// Overlay renders the current selection over the pick-map.
func (c *Controller) Overlay() []byte {
	return Render(c.pick, c.engine.State, c.palette)
}

// Rows lists the plate's objects with their selection state.
func (c *Controller) Rows() []Row {
	plate := c.res.Selection.Plate
	if plate == nil {
		return nil
	}
	rows := make([]Row, 0, len(plate.Objects))
	for _, obj := range plate.Objects {
		if !c.engine.Has(obj.ID) {
			continue
		}
		name := strings.TrimSpace(obj.Name)
		if name == "" {
			name = fmt.Sprintf("Object %d", obj.ID)
		}
		rows = append(rows, Row{ID: obj.ID, Name: name, State: c.engine.State(obj.ID)})
	}
	return rows
}

// StatusLine describes why interaction is limited, or summarizes the plate.
func (c *Controller) StatusLine() string {
	if !c.res.Availability.Available {
		return c.res.Availability.StatusLine()
	}
	summary := fmt.Sprintf("%d objects, %d skipped, %d selected", c.engine.Total(), len(c.engine.skipped), len(c.engine.pending))
	switch c.pickStatus {
	case PickLoading:
		return summary + " (loading preview)"
	case PickUnavailable, PickNone:
		return summary + " (preview unavailable, use the list)"
	}
	return summary
}

// CanApply reports whether the Apply action should be enabled.
func (c *Controller) CanApply() bool {
	return c.res.Availability.Available && c.engine.CanApply() && !c.dispatcher.InFlight()
}

// PrepareApply returns the IDs to dispatch and the availability to check
// them against.
func (c *Controller) PrepareApply() ([]int, Availability, error) {
	if !c.res.Availability.Available {
		return nil, c.res.Availability, ErrNotAvailable
	}
	ids := c.engine.Pending()
	if len(ids) == 0 {
		return nil, c.res.Availability, ErrNothingPending
	}
	if c.dispatcher.InFlight() {
		return nil, c.res.Availability, ErrDispatchInFlight
	}
	return ids, c.res.Availability, nil
}

// Dispatch sends ids through the dispatcher. It may run off the UI thread.
func (c *Controller) Dispatch(ctx context.Context, avail Availability, ids []int) error {
	return c.dispatcher.Apply(ctx, avail, ids)
}

// ApplyFinished folds a finished dispatch into the current session. On
// success the sent IDs become skipped and pending is cleared, including
// objects toggled while the command was in flight. On failure the pending
// selection is kept for a retry.
func (c *Controller) ApplyFinished(ids []int, err error) {
	if err != nil {
		return
	}
	c.engine.Committed(ids)
	c.engine.ClearPending()
}

// Apply dispatches the pending selection synchronously.
func (c *Controller) Apply(ctx context.Context) error {
	if _, _, err := c.PrepareApply(); err != nil {
		return err
	}
	avail := c.res.Availability
	return c.engine.Commit(ctx, func(ctx context.Context, ids []int) error {
		return c.Dispatch(ctx, avail, ids)
	})
}

// IsDispatchError reports whether err came from the command channel.
func IsDispatchError(err error) bool {
	return errors.Is(err, ErrCommandDispatchFailed)
}
