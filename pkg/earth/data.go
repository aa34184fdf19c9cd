package earth

import (
	"context"
	"log"
	"time"

	"github.com/sudorandom/earth-viz/pkg/sources"
)

// post queues fn to run on the host goroutine at the next Tick. Safe for use from
// any goroutine.
func (e *Earth) post(fn func()) {
	e.mu.Lock()
	e.mailbox = append(e.mailbox, fn)
	e.mu.Unlock()
}

func (e *Earth) drain() {
	e.mu.Lock()
	run := e.mailbox
	e.mailbox = nil
	e.mu.Unlock()
	for _, fn := range run {
		fn()
	}
}

// SetMarkerData replaces the marker records. Records without a usable position are
// dropped. Any fetch still in flight is discarded when it completes.
func (e *Earth) SetMarkerData(recs []sources.Record) {
	e.seq++
	e.applyMarkerData(append([]sources.Record(nil), recs...))
}

func (e *Earth) applyMarkerData(recs []sources.Record) {
	e.markers = e.normalizeMarkers(recs)
	if e.rendered {
		e.fire(eventMarkerData)
	}
}

// requestMarkerData loads markers from the configured source, or redraws the ones
// already held when there is no source.
func (e *Earth) requestMarkerData() {
	switch {
	case e.markerFile.Live():
		if e.live == nil {
			e.startLive(e.markerFile.Name)
		} else if len(e.markers) > 0 {
			e.fire(eventMarkerData)
		}
	case e.markerFile.Name != "":
		e.fetchMarkers(e.markerFile)
	case len(e.markers) > 0:
		e.fire(eventMarkerData)
	}
}

func (e *Earth) fetchMarkers(res sources.Resource) {
	if e.fetcher == nil {
		log.Printf("[markers] No fetcher configured for %s", res.Name)
		return
	}
	e.seq++
	id := e.seq
	ctx := e.ctx
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		recs, err := sources.LoadRecords(ctx, e.fetcher, res)
		e.post(func() {
			if ctx.Err() != nil {
				return
			}
			if id < e.seq {
				log.Printf("[markers] Discarding stale response %d for %s (latest %d)", id, res.Name, e.seq)
				return
			}
			if err != nil {
				log.Printf("[markers] Failed to load %s: %v", res.Name, err)
				return
			}
			log.Printf("[markers] Loaded %d records from %s", len(recs), res.Name)
			e.applyMarkerData(recs)
		})
	}()
}

func (e *Earth) startLive(url string) {
	if e.live != nil {
		e.live()
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.live = cancel
	feed := &sources.LiveFeed{URL: url}
	go func() {
		err := feed.Run(ctx, func(recs []sources.Record) {
			e.post(func() {
				if ctx.Err() == nil {
					e.SetMarkerData(recs)
				}
			})
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("[markers] Live feed %s stopped: %v", url, err)
		}
	}()
}

// RefreshMarkers reloads the marker source now.
func (e *Earth) RefreshMarkers() {
	if e.markerFile.Live() {
		return
	}
	e.requestMarkerData()
}

// RefreshMarkerData reloads the marker source on an interval of at least one
// minute, replacing any earlier refresh schedule. It returns the interval in effect,
// or 0 when refreshing is off.
func (e *Earth) RefreshMarkerData(interval time.Duration) time.Duration {
	if interval < minRefresh {
		return e.refreshInterval()
	}
	e.refresh.Cancel()
	e.refresh = e.sched.Every(interval, func(time.Time) { e.RefreshMarkers() })
	e.refreshEvery = interval
	return interval
}

// StopRefresh cancels the refresh schedule.
func (e *Earth) StopRefresh() {
	e.refresh.Cancel()
	e.refresh = nil
	e.refreshEvery = 0
}

func (e *Earth) refreshInterval() time.Duration {
	if e.refresh == nil || !e.refresh.Active() {
		return 0
	}
	return e.refreshEvery
}
