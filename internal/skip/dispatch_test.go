package skip

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skipper/internal/printer"
)

type fakeCommander struct {
	mu    sync.Mutex
	calls []printer.SkipCommand
	err   error
	gate  chan struct{}
	began chan struct{}
}

func (f *fakeCommander) ApplySkip(_ context.Context, cmd printer.SkipCommand) error {
	if f.began != nil {
		close(f.began)
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	return f.err
}

func (f *fakeCommander) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var availablePlate = Availability{PlateIndex: 1, Available: true}

func TestDispatcher_SendsSortedUniqueList(t *testing.T) {
	cmd := &fakeCommander{}
	d := NewDispatcher(cmd, "")

	require.NoError(t, d.Apply(context.Background(), availablePlate, []int{30, 10, 30, 20, 0}))
	require.Len(t, cmd.calls, 1)
	assert.Equal(t, []int{10, 20, 30}, cmd.calls[0].ObjList)
	assert.Equal(t, "0", cmd.calls[0].SequenceID)
	assert.False(t, d.InFlight())
}

func TestDispatcher_UsesConfiguredSequenceID(t *testing.T) {
	cmd := &fakeCommander{}
	d := NewDispatcher(cmd, " 42 ")
	require.NoError(t, d.Apply(context.Background(), availablePlate, []int{1}))
	require.NoError(t, d.Apply(context.Background(), availablePlate, []int{2}))
	assert.Equal(t, "42", cmd.calls[0].SequenceID)
	assert.Equal(t, "42", cmd.calls[1].SequenceID)
}

func TestDispatcher_GuardsWithoutNetworkCall(t *testing.T) {
	cmd := &fakeCommander{}
	d := NewDispatcher(cmd, "0")

	assert.ErrorIs(t, d.Apply(context.Background(), Availability{Reason: ReasonObjectCountTooLow}, []int{1}), ErrNotAvailable)
	assert.ErrorIs(t, d.Apply(context.Background(), availablePlate, nil), ErrNothingPending)
	assert.ErrorIs(t, d.Apply(context.Background(), availablePlate, []int{0, -3}), ErrNothingPending)
	assert.Zero(t, cmd.callCount())
}

func TestDispatcher_WrapsFailures(t *testing.T) {
	cmd := &fakeCommander{err: errors.New("api /api/skip-objects returned status 409")}
	d := NewDispatcher(cmd, "0")

	err := d.Apply(context.Background(), availablePlate, []int{1})
	assert.ErrorIs(t, err, ErrCommandDispatchFailed)
	assert.True(t, IsDispatchError(err))
	assert.Contains(t, err.Error(), "409")
	assert.False(t, d.InFlight())
}

func TestDispatcher_RejectsOverlappingDispatch(t *testing.T) {
	cmd := &fakeCommander{gate: make(chan struct{}), began: make(chan struct{})}
	d := NewDispatcher(cmd, "0")

	done := make(chan error, 1)
	go func() { done <- d.Apply(context.Background(), availablePlate, []int{1}) }()
	<-cmd.began

	assert.True(t, d.InFlight())
	assert.ErrorIs(t, d.Apply(context.Background(), availablePlate, []int{2}), ErrDispatchInFlight)

	close(cmd.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, cmd.callCount())
	assert.False(t, d.InFlight())
}
