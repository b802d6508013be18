package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/five82/skipper/internal/printer"
	"github.com/five82/skipper/internal/state"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultMetadataRetry = 15 * time.Second
	maxBackoff           = 30 * time.Second
)

// Poller refreshes the store with printer status and, when the loaded
// gcode file changes, its skip-object metadata.
type Poller struct {
	store         *state.Store
	client        printer.DeviceClient
	interval      time.Duration
	metadataRetry time.Duration
	now           func() time.Time

	failures    int
	metaFile    string
	metaOK      bool
	metaRetryAt time.Time
}

// NewPoller builds a Poller. Zero durations use defaults.
func NewPoller(store *state.Store, client printer.DeviceClient, interval, metadataRetry time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if metadataRetry <= 0 {
		metadataRetry = defaultMetadataRetry
	}
	return &Poller{
		store:         store,
		client:        client,
		interval:      interval,
		metadataRetry: metadataRetry,
		now:           time.Now,
	}
}

// Start launches a background goroutine that refreshes the store until ctx
// is cancelled. Consecutive failures back off exponentially. It returns
// immediately.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		for {
			p.refresh(ctx)
			timer := time.NewTimer(calculateBackoff(p.failures, p.interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func (p *Poller) refresh(ctx context.Context) {
	status, err := p.client.FetchStatus(ctx)
	if err != nil {
		p.failures++
		p.store.Update(nil, err)
		log.Printf("status poll failed (%d in a row): %v", p.failures, err)
		return
	}
	p.failures = 0
	p.store.Update(status, nil)
	p.syncMetadata(ctx, status.GcodeFile)
}

func (p *Poller) syncMetadata(ctx context.Context, gcodeFile string) {
	file := strings.TrimSpace(gcodeFile)
	if file == "" {
		return
	}
	if file == p.metaFile {
		if p.metaOK || p.now().Before(p.metaRetryAt) {
			return
		}
	}

	meta, err := p.client.FetchSkipMetadata(ctx, file)
	p.metaFile = file
	if err != nil {
		p.metaOK = false
		p.metaRetryAt = p.now().Add(p.metadataRetry)
		p.store.UpdateMetadata(file, nil, err)
		log.Printf("skip metadata for %s failed, retrying in %s: %v", file, p.metadataRetry, err)
		return
	}
	p.metaOK = true
	p.store.UpdateMetadata(file, meta, nil)
	log.Printf("skip metadata loaded for %s (%d plates)", file, len(meta.Plates))
}

// calculateBackoff doubles the poll interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
