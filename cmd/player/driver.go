package main

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/player/playback"
	"github.com/cyberyard-io/cyberyard/internal/player/sync"
)

// logOnlyClipDuration stands in for a clip's runtime when no player command
// is configured.
const logOnlyClipDuration = 10 * time.Second

// Driver turns sync updates into an endless playback loop. Each clip is
// handed to an external player process; the loop decides what plays next.
type Driver struct {
	command   string
	updates   <-chan sync.Update
	resume    chan struct{}
	loop      *playback.Loop
	clipPause time.Duration
}

func NewDriver(command string, updates <-chan sync.Update) *Driver {
	return &Driver{
		command:   command,
		updates:   updates,
		resume:    make(chan struct{}, 1),
		loop:      playback.NewLoop(),
		clipPause: logOnlyClipDuration,
	}
}

// Resume asks a halted loop to try its playlist again, the overlay's
// "tap to play" action. Safe to call from any goroutine.
func (d *Driver) Resume() {
	select {
	case d.resume <- struct{}{}:
	default:
	}
}

func (d *Driver) Run(ctx context.Context) {
	for {
		clip, ok := d.loop.Current()
		if !ok {
			// nothing playable; block until the playlist changes
			select {
			case <-ctx.Done():
				return
			case u := <-d.updates:
				d.apply(u)
			case <-d.resume:
				d.loop.Resume()
			}
			continue
		}

		if err := d.play(ctx, clip); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("video_id", clip.ID).Str("title", clip.Title).Msg("clip failed")
			if d.loop.Failed() == playback.ActionHalt && d.loop.Halted() {
				log.Error().Msg("too many consecutive clip failures, playback halted until the playlist changes")
			}
		} else {
			d.loop.Ended()
		}

		// pick up any playlist change between clips
		select {
		case u := <-d.updates:
			d.apply(u)
		case <-d.resume:
			// stale tap, playback is already running
		default:
		}
	}
}

func (d *Driver) apply(u sync.Update) {
	if u.Suspended {
		log.Info().Msg("device suspended, clearing screen")
	}
	d.loop.SetClips(u.Clips)
}

// play blocks for the duration of one clip. With no configured command it
// just logs, which keeps the binary useful on headless dev machines.
func (d *Driver) play(ctx context.Context, clip playback.Clip) error {
	log.Info().Int("video_id", clip.ID).Str("title", clip.Title).Msg("playing clip")

	if d.command == "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.clipPause):
			d.loop.Started()
			return nil
		}
	}

	parts := strings.Fields(d.command)
	args := append(parts[1:], clip.URL)
	cmd := exec.CommandContext(ctx, parts[0], args...)
	if err := cmd.Run(); err != nil {
		return err
	}
	d.loop.Started()
	return nil
}
