package sync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/player/api"
	"github.com/cyberyard-io/cyberyard/internal/player/credentials"
	"github.com/cyberyard-io/cyberyard/internal/player/playback"
)

// DefaultInterval is how often the actor polls when no push event arrives.
const DefaultInterval = 5 * time.Minute

// emptyInterval is the faster poll used while the device has nothing to
// play, so a first playlist assignment shows up quickly.
const emptyInterval = 30 * time.Second

// Source says where an Update's clips came from.
type Source string

const (
	SourceServer Source = "server"
	SourceCache  Source = "cache"
)

// Update is one playlist state handed to the playback driver. Suspended
// updates always carry an empty clip list.
type Update struct {
	Clips     []playback.Clip
	Suspended bool
	Source    Source
	SyncedAt  time.Time
}

// Fetcher is the slice of the server client the actor needs.
type Fetcher interface {
	FetchPlaylist(ctx context.Context, token, etag string, t api.Telemetry) (*api.PlaylistResult, error)
}

// Actor serializes all playlist fetches through one goroutine. Ticker
// expiries, push events, and manual refreshes all funnel into the same
// single-slot trigger, so at most one fetch is ever in flight and a burst of
// triggers during a fetch collapses into one follow-up fetch.
type Actor struct {
	fetcher   Fetcher
	creds     credentials.Store
	cache     *Cache
	interval  time.Duration
	telemetry func() api.Telemetry

	// onAuthExpired fires after credentials are cleared; the owner returns
	// the device to pairing.
	onAuthExpired func()

	triggers chan struct{}
	updates  chan Update

	etag  string
	empty bool
}

func NewActor(fetcher Fetcher, creds credentials.Store, cache *Cache, onAuthExpired func()) *Actor {
	return &Actor{
		fetcher:       fetcher,
		creds:         creds,
		cache:         cache,
		interval:      DefaultInterval,
		telemetry:     func() api.Telemetry { return api.Telemetry{} },
		onAuthExpired: onAuthExpired,
		triggers:      make(chan struct{}, 1),
		updates:       make(chan Update, 1),
	}
}

// SetInterval overrides the poll interval. For tests.
func (a *Actor) SetInterval(d time.Duration) { a.interval = d }

// SetTelemetry installs a provider whose readings are stamped onto every
// fetch, keeping the server's device status current as a side effect.
func (a *Actor) SetTelemetry(fn func() api.Telemetry) { a.telemetry = fn }

// Updates is a latest-value mailbox: a slow consumer sees only the newest
// playlist state, never a backlog of stale ones.
func (a *Actor) Updates() <-chan Update { return a.updates }

// Trigger requests a sync. Safe from any goroutine; triggers raised while a
// fetch is running coalesce into a single pending one.
func (a *Actor) Trigger() {
	select {
	case a.triggers <- struct{}{}:
	default:
	}
}

// Run owns the sync loop until ctx is canceled or credentials are rejected.
// It first replays the cached snapshot so the screen lights up before the
// network answers, then fetches immediately and on every trigger or tick.
func (a *Actor) Run(ctx context.Context) {
	if snap, err := a.cache.Load(); err != nil {
		log.Error().Err(err).Msg("[sync] failed to load cached playlist")
	} else if snap != nil {
		a.etag = snap.ETag
		a.publish(Update{Clips: snap.Clips, Suspended: snap.Suspended, Source: SourceCache, SyncedAt: snap.SyncedAt})
	}

	if !a.syncOnce(ctx) {
		return
	}
	timer := time.NewTimer(a.nextInterval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-a.triggers:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		if !a.syncOnce(ctx) {
			return
		}
		timer.Reset(a.nextInterval())
	}
}

// nextInterval shortens the poll while there is nothing to play.
func (a *Actor) nextInterval() time.Duration {
	if a.empty && a.interval > emptyInterval {
		return emptyInterval
	}
	return a.interval
}

// syncOnce performs one fetch. It returns false only when the actor must
// stop because the server rejected our credentials.
func (a *Actor) syncOnce(ctx context.Context) bool {
	token, _, err := a.creds.Load()
	if err != nil {
		log.Error().Err(err).Msg("[sync] failed to load credentials")
		return true
	}
	if token == "" {
		return true
	}

	res, err := a.fetcher.FetchPlaylist(ctx, token, a.etag, a.telemetry())
	switch {
	case err == nil:
	case errors.Is(err, api.ErrAuthExpired):
		log.Warn().Msg("[sync] credentials rejected, returning to pairing")
		if cerr := a.creds.Clear(); cerr != nil {
			log.Error().Err(cerr).Msg("[sync] failed to clear credentials")
		}
		if cerr := a.cache.Clear(); cerr != nil {
			log.Error().Err(cerr).Msg("[sync] failed to clear cached playlist")
		}
		if a.onAuthExpired != nil {
			a.onAuthExpired()
		}
		return false
	case errors.Is(err, api.ErrNetworkUnavailable):
		// keep playing whatever we have; the ticker retries
		log.Warn().Err(err).Msg("[sync] server unreachable, serving cached playlist")
		return true
	default:
		log.Error().Err(err).Msg("[sync] playlist fetch failed")
		return true
	}

	if res.NotModified {
		log.Debug().Msg("[sync] playlist unchanged")
		return true
	}

	a.etag = res.ETag
	pl := res.Playlist
	clips := toClips(pl.Videos)
	if pl.Suspended {
		clips = nil
	}
	a.empty = len(clips) == 0 && !pl.Suspended

	now := time.Now()
	snap := Snapshot{Clips: clips, PlaylistID: pl.PlaylistID, Suspended: pl.Suspended, ETag: res.ETag, SyncedAt: now}
	if err := a.cache.Save(snap); err != nil {
		log.Error().Err(err).Msg("[sync] failed to persist playlist snapshot")
	}

	log.Info().Int("videos", len(clips)).Bool("suspended", pl.Suspended).Msg("[sync] playlist updated")
	a.publish(Update{Clips: clips, Suspended: pl.Suspended, Source: SourceServer, SyncedAt: now})
	return true
}

func (a *Actor) publish(u Update) {
	for {
		select {
		case a.updates <- u:
			return
		default:
			// drop the stale pending update, newest wins
			select {
			case <-a.updates:
			default:
			}
		}
	}
}

func toClips(items []packets.VideoItem) []playback.Clip {
	clips := make([]playback.Clip, 0, len(items))
	for _, v := range items {
		clips = append(clips, playback.Clip{ID: v.ID, Title: v.Title, URL: v.VideoURL})
	}
	return clips
}
