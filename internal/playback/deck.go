package playback

import (
	"context"
	"sync"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/ports"
)

var log = logging.L("playback")

const defaultProgressInterval = 250 * time.Millisecond

// Deck plays archive entries through a ports.Player according to a
// Selection, and reports progress through the event sink. Player calls
// run outside mu; gen invalidates an Open that a later transition
// overtook.
type Deck struct {
	player   ports.Player
	events   ports.EventSink
	interval time.Duration

	mu      sync.Mutex
	sel     *Selection
	current *track
	gen     uint64
}

type track struct {
	index    int
	playback ports.Playback
	quit     chan struct{}
}

func NewDeck(player ports.Player, events ports.EventSink, progressInterval time.Duration) *Deck {
	if progressInterval <= 0 {
		progressInterval = defaultProgressInterval
	}
	return &Deck{
		player:   player,
		events:   events,
		interval: progressInterval,
		sel:      NewSelection(),
	}
}

// Load implements ports.Playlist. The playing entry survives when its link
// is still listed; anything else is stopped.
func (d *Deck) Load(entries []domain.ArchiveEntry) {
	d.mu.Lock()
	t := d.sel.Load(entries)
	var stale ports.Playback
	if t.Stop != None {
		d.gen++
		stale = d.detachLocked()
	} else if d.current != nil {
		d.current.index = d.sel.Active()
	}
	snap := d.sel.Snapshot()
	d.mu.Unlock()

	stopPlayback(stale)
	d.events.PlaybackChanged(snap)
}

// Toggle starts entry i, or stops it when it is already playing.
func (d *Deck) Toggle(ctx context.Context, i int) error {
	d.mu.Lock()
	t, err := d.sel.Toggle(i)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	return d.applyAndUnlock(ctx, t)
}

// Select plays entry i in the shared player. A negative i stops playback.
func (d *Deck) Select(ctx context.Context, i int) error {
	d.mu.Lock()
	t, err := d.sel.Select(i)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	return d.applyAndUnlock(ctx, t)
}

// SelectLink selects the entry with the given link. An empty link stops
// playback.
func (d *Deck) SelectLink(ctx context.Context, link string) error {
	if link == "" {
		return d.Select(ctx, None)
	}
	d.mu.Lock()
	i := d.sel.IndexOf(link)
	d.mu.Unlock()
	if i == None {
		return ErrNoSuchEntry
	}
	return d.Select(ctx, i)
}

// Stop halts whatever is playing or still opening.
func (d *Deck) Stop() {
	d.mu.Lock()
	if d.current == nil && d.sel.Active() == None {
		d.mu.Unlock()
		return
	}
	d.gen++
	stale := d.detachLocked()
	d.sel.Ended()
	snap := d.sel.Snapshot()
	d.mu.Unlock()

	stopPlayback(stale)
	d.events.PlaybackChanged(snap)
}

func (d *Deck) Snapshot() domain.PlaybackSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel.Snapshot()
}

// applyAndUnlock performs t. It is entered with d.mu held and releases it
// before touching the player or emitting.
func (d *Deck) applyAndUnlock(ctx context.Context, t Transition) error {
	d.gen++
	gen := d.gen
	stale := d.detachLocked()

	if t.Play == None {
		snap := d.sel.Snapshot()
		d.mu.Unlock()
		stopPlayback(stale)
		d.events.PlaybackChanged(snap)
		return nil
	}

	entry, _ := d.sel.Entry(t.Play)
	d.mu.Unlock()
	stopPlayback(stale)

	pb, err := d.player.Open(ctx, entry.Link)

	d.mu.Lock()
	if d.gen != gen {
		// Overtaken by a later Toggle, Select, Stop or Load.
		d.mu.Unlock()
		stopPlayback(pb)
		return nil
	}
	if err != nil {
		d.sel.Ended()
		snap := d.sel.Snapshot()
		d.mu.Unlock()

		log.Warn("playback failed to start", logging.KeyURL, entry.Link, logging.KeyError, err)
		d.events.SessionError(domain.ErrorCodePlayback, err.Error())
		d.events.PlaybackChanged(snap)
		return err
	}

	tr := &track{index: d.sel.Active(), playback: pb, quit: make(chan struct{})}
	d.current = tr
	snap := d.sel.Snapshot()
	d.mu.Unlock()

	log.Debug("playing", logging.KeyURL, entry.Link, "index", tr.index)
	go d.watch(tr)
	d.events.PlaybackChanged(snap)
	return nil
}

// detachLocked ends the watcher of the current track and hands its
// playback back for stopping outside the lock.
func (d *Deck) detachLocked() ports.Playback {
	if d.current == nil {
		return nil
	}
	close(d.current.quit)
	pb := d.current.playback
	d.current = nil
	return pb
}

func stopPlayback(pb ports.Playback) {
	if pb == nil {
		return
	}
	if err := pb.Stop(); err != nil {
		log.Debug("stop playback", logging.KeyError, err)
	}
}

func (d *Deck) watch(t *track) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.quit:
			return
		case <-ticker.C:
			d.mu.Lock()
			if d.current != t {
				d.mu.Unlock()
				return
			}
			changed := d.sel.SetProgress(t.index, percent(t.playback.Position(), t.playback.Duration()))
			snap := d.sel.Snapshot()
			d.mu.Unlock()
			if changed {
				d.events.PlaybackChanged(snap)
			}
		case err := <-t.playback.Done():
			d.mu.Lock()
			if d.current != t {
				d.mu.Unlock()
				return
			}
			index := t.index
			d.current = nil
			d.sel.Ended()
			snap := d.sel.Snapshot()
			d.mu.Unlock()

			if err != nil {
				log.Warn("playback failed", "index", index, logging.KeyError, err)
				d.events.SessionError(domain.ErrorCodePlayback, err.Error())
			}
			d.events.PlaybackChanged(snap)
			return
		}
	}
}

func percent(position, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(position) / float64(duration) * 100
}
