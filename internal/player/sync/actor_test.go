package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/player/api"
	"github.com/cyberyard-io/cyberyard/internal/player/credentials"
	"github.com/cyberyard-io/cyberyard/internal/player/playback"
)

type memCreds struct {
	mu    gosync.Mutex
	token string
	info  *credentials.Info
}

func (m *memCreds) Save(token string, info credentials.Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.info = token, &info
	return nil
}

func (m *memCreds) Load() (string, *credentials.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.info, nil
}

func (m *memCreds) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.info = "", nil
	return nil
}

type fakeFetcher struct {
	mu    gosync.Mutex
	calls int
	fn    func(call int) (*api.PlaylistResult, error)
	gate  chan struct{} // when set, each fetch blocks until a receive
}

func (f *fakeFetcher) FetchPlaylist(ctx context.Context, token, etag string, t api.Telemetry) (*api.PlaylistResult, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.fn(call)
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func serverPlaylist(ids ...int) *api.PlaylistResult {
	videos := make([]packets.VideoItem, len(ids))
	for i, id := range ids {
		videos[i] = packets.VideoItem{ID: id, Title: "clip", VideoURL: "https://cdn.example.com/v.mp4", OrderIndex: i}
	}
	return &api.PlaylistResult{
		Playlist: &packets.PlaylistResponse{Success: true, Videos: videos},
		ETag:     "etag-1",
	}
}

func pairedActor(t *testing.T, f Fetcher) (*Actor, *memCreds, *Cache) {
	t.Helper()
	creds := &memCreds{token: "tok", info: &credentials.Info{DeviceID: 1}}
	cache := NewCache(t.TempDir())
	a := NewActor(f, creds, cache, nil)
	return a, creds, cache
}

func waitUpdate(t *testing.T, a *Actor) Update {
	t.Helper()
	select {
	case u := <-a.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestSyncPublishesServerPlaylist(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) { return serverPlaylist(1, 2), nil }}
	a, _, cache := pairedActor(t, f)

	if !a.syncOnce(context.Background()) {
		t.Fatal("syncOnce should continue")
	}

	u := waitUpdate(t, a)
	if u.Source != SourceServer || len(u.Clips) != 2 || u.Clips[0].ID != 1 {
		t.Errorf("update = %+v", u)
	}

	snap, err := cache.Load()
	if err != nil || snap == nil {
		t.Fatalf("snapshot not persisted: %v", err)
	}
	if len(snap.Clips) != 2 || snap.ETag != "etag-1" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSyncNotModifiedPublishesNothing(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) {
		return &api.PlaylistResult{ETag: "etag-1", NotModified: true}, nil
	}}
	a, _, _ := pairedActor(t, f)

	a.syncOnce(context.Background())

	select {
	case u := <-a.Updates():
		t.Errorf("unexpected update %+v", u)
	default:
	}
}

func TestSyncSuspendedYieldsEmptyClips(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) {
		res := serverPlaylist(1, 2)
		res.Playlist.Suspended = true
		return res, nil
	}}
	a, creds, _ := pairedActor(t, f)

	a.syncOnce(context.Background())

	u := waitUpdate(t, a)
	if !u.Suspended || len(u.Clips) != 0 {
		t.Errorf("update = %+v, want suspended with no clips", u)
	}

	// suspension must not touch credentials
	token, _, _ := creds.Load()
	if token == "" {
		t.Error("credentials were cleared on suspension")
	}
}

func TestSyncNetworkErrorKeepsState(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) { return nil, api.ErrNetworkUnavailable }}
	a, creds, _ := pairedActor(t, f)

	if !a.syncOnce(context.Background()) {
		t.Fatal("a network error must not stop the actor")
	}
	token, _, _ := creds.Load()
	if token == "" {
		t.Error("credentials were cleared on a network error")
	}
}

func TestSyncAuthExpiredClearsAndStops(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) { return nil, api.ErrAuthExpired }}

	creds := &memCreds{token: "tok", info: &credentials.Info{DeviceID: 1}}
	cache := NewCache(t.TempDir())
	cache.Save(Snapshot{Clips: []playback.Clip{{ID: 1}}, ETag: "etag-1"})

	expired := false
	a := NewActor(f, creds, cache, func() { expired = true })

	if a.syncOnce(context.Background()) {
		t.Fatal("auth rejection should stop the actor")
	}
	if !expired {
		t.Error("onAuthExpired was not called")
	}
	if token, _, _ := creds.Load(); token != "" {
		t.Error("credentials were not cleared")
	}
	if snap, _ := cache.Load(); snap != nil {
		t.Error("cached playlist was not cleared")
	}
}

func TestSyncRunReplaysCacheBeforeFetching(t *testing.T) {
	started := make(chan struct{})
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) {
		close(started)
		return nil, api.ErrNetworkUnavailable
	}}

	creds := &memCreds{token: "tok", info: &credentials.Info{DeviceID: 1}}
	cache := NewCache(t.TempDir())
	cache.Save(Snapshot{Clips: []playback.Clip{{ID: 9}}, ETag: "etag-9", SyncedAt: time.Now()})

	a := NewActor(f, creds, cache, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	u := waitUpdate(t, a)
	if u.Source != SourceCache || len(u.Clips) != 1 || u.Clips[0].ID != 9 {
		t.Errorf("first update = %+v, want cached clip 9", u)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
	}
}

func TestSyncTriggersCoalesceWhileFetchInFlight(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeFetcher{gate: gate, fn: func(int) (*api.PlaylistResult, error) { return serverPlaylist(1), nil }}
	a, _, _ := pairedActor(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { a.Run(ctx); close(done) }()

	// while the initial fetch is blocked, pile up triggers
	for i := 0; i < 5; i++ {
		a.Trigger()
	}
	gate <- struct{}{} // release the initial fetch
	gate <- struct{}{} // release the one coalesced follow-up

	// no third fetch should be pending; give the loop a moment then cancel
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case gate <- struct{}{}:
		t.Fatal("a third fetch ran, triggers did not coalesce")
	case <-time.After(2 * time.Second):
		t.Fatal("actor did not stop")
	}
	if got := f.count(); got != 2 {
		t.Errorf("fetch count = %d, want 2", got)
	}
}

func TestSyncUnpairedDeviceSkipsFetch(t *testing.T) {
	f := &fakeFetcher{fn: func(int) (*api.PlaylistResult, error) { return serverPlaylist(1), nil }}
	creds := &memCreds{}
	a := NewActor(f, creds, NewCache(t.TempDir()), nil)

	if !a.syncOnce(context.Background()) {
		t.Fatal("missing credentials should not stop the actor")
	}
	if f.count() != 0 {
		t.Error("fetched without credentials")
	}
}

func TestSyncMailboxKeepsNewestUpdate(t *testing.T) {
	f := &fakeFetcher{fn: func(n int) (*api.PlaylistResult, error) {
		res := serverPlaylist(n)
		res.ETag = ""
		return res, nil
	}}
	a, _, _ := pairedActor(t, f)

	// two syncs with no consumer: the first update must be displaced
	a.syncOnce(context.Background())
	a.syncOnce(context.Background())

	u := waitUpdate(t, a)
	if len(u.Clips) != 1 || u.Clips[0].ID != 2 {
		t.Errorf("update = %+v, want the second sync's clip", u)
	}
}
