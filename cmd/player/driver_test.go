package main

import (
	"context"
	"testing"
	"time"

	"github.com/cyberyard-io/cyberyard/internal/player/playback"
	"github.com/cyberyard-io/cyberyard/internal/player/sync"
)

func TestDriverResumeRevivesHaltedLoop(t *testing.T) {
	updates := make(chan sync.Update, 1)
	d := NewDriver("", updates)
	d.clipPause = time.Millisecond

	d.loop.SetClips([]playback.Clip{
		{ID: 1, Title: "a", URL: "http://cdn/a.mp4"},
		{ID: 2, Title: "b", URL: "http://cdn/b.mp4"},
	})
	for i := 0; i < 3; i++ {
		d.loop.Failed()
	}
	if !d.loop.Halted() {
		t.Fatal("loop should halt after three straight failures")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Resume()

	// give the driver time to pick the resume up and play a few clips
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if d.loop.Halted() {
		t.Error("loop still halted after Resume")
	}
	if _, ok := d.loop.Current(); !ok {
		t.Error("expected a playable clip after Resume")
	}
}

func TestDriverResumeBeforeRunDoesNotBlock(t *testing.T) {
	d := NewDriver("", make(chan sync.Update))

	// repeated taps must coalesce instead of blocking the UI goroutine
	d.Resume()
	d.Resume()
	d.Resume()

	select {
	case <-d.resume:
	default:
		t.Fatal("expected one pending resume token")
	}
	select {
	case <-d.resume:
		t.Fatal("taps should coalesce into a single token")
	default:
	}
}
