package skip

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/five82/skipper/internal/printer"
)

// Commander sends skip commands to the printer.
type Commander interface {
	ApplySkip(ctx context.Context, cmd printer.SkipCommand) error
}

const defaultSequenceID = "0"

// Dispatcher sends pending selections to the printer, one at a time.
type Dispatcher struct {
	commander  Commander
	sequenceID string
	inFlight   atomic.Bool
}

// NewDispatcher builds a Dispatcher sending the given fixed sequence id.
func NewDispatcher(commander Commander, sequenceID string) *Dispatcher {
	if strings.TrimSpace(sequenceID) == "" {
		sequenceID = defaultSequenceID
	}
	return &Dispatcher{commander: commander, sequenceID: strings.TrimSpace(sequenceID)}
}

// InFlight reports whether a command is being sent.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

// Apply sends ids as one skip command. It refuses without a network call when
// the plate is unavailable, ids is empty, or another command is in flight.
// Transport and device failures wrap ErrCommandDispatchFailed.
func (d *Dispatcher) Apply(ctx context.Context, avail Availability, ids []int) error {
	if !avail.Available {
		return ErrNotAvailable
	}
	list := normalizeIDs(ids)
	if len(list) == 0 {
		return ErrNothingPending
	}
	if d.commander == nil {
		return fmt.Errorf("%w: no command channel", ErrCommandDispatchFailed)
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return ErrDispatchInFlight
	}
	defer d.inFlight.Store(false)

	cmd := printer.SkipCommand{ObjList: list, SequenceID: d.sequenceID}
	if err := d.commander.ApplySkip(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandDispatchFailed, err)
	}
	return nil
}

func normalizeIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
