// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sim drives a session against simulated collaborators: a decode
// engine that advances in real time and a resource whose download runs at
// a configurable byte rate. Used by the playsimd daemon to exercise the
// full session lifecycle without real media.
package sim

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/session"
	"github.com/ManuGH/playctl/internal/session/ports"
	"github.com/ManuGH/playctl/internal/session/testkit"
)

// Profile describes the simulated media.
type Profile struct {
	// Duration of the simulated media.
	Duration time.Duration
	// SizeBytes is the total resource size.
	SizeBytes int64
	// DownloadBytesPerSec is how fast the simulated network delivers.
	DownloadBytesPerSec int64
	// MetadataDelay before the engine reports metadata loaded.
	MetadataDelay time.Duration
	// Tick is the simulation step.
	Tick time.Duration
}

// DefaultProfile simulates one minute of media downloading comfortably
// faster than it plays.
func DefaultProfile() Profile {
	return Profile{
		Duration:            time.Minute,
		SizeBytes:           6 << 20,
		DownloadBytesPerSec: 256 << 10,
		MetadataDelay:       50 * time.Millisecond,
		Tick:                100 * time.Millisecond,
	}
}

// Pipeline bundles a session with its simulated collaborators.
type Pipeline struct {
	Controller *session.Controller
	Engine     *testkit.Engine
	Resource   *testkit.Resource
	Owner      *testkit.Owner

	profile Profile
	logger  zerolog.Logger
}

// New builds a session wired to simulated collaborators. The returned
// pipeline is idle until Start.
func New(cfg session.Config, profile Profile) *Pipeline {
	engine := testkit.NewEngine()
	resource := testkit.NewResource()
	resource.SetLength(profile.SizeBytes)
	resource.SetDownloadRate(float64(profile.DownloadBytesPerSec), true)
	owner := testkit.NewOwner()

	c := session.New(cfg, session.Deps{
		Engine:   engine,
		Resource: resource,
		Owner:    owner,
		Graph:    testkit.NewGraph(),
	})
	return &Pipeline{
		Controller: c,
		Engine:     engine,
		Resource:   resource,
		Owner:      owner,
		profile:    profile,
		logger:     log.WithSession("sim", c.ID()),
	}
}

// Start runs the control loop, loads the session and begins the
// simulation. Both goroutines exit when ctx is done or the session closes.
func (p *Pipeline) Start(ctx context.Context) error {
	go func() {
		_ = p.Controller.Run(ctx)
	}()
	if err := p.Controller.Load(ctx, nil); err != nil {
		return err
	}
	go p.drive(ctx)
	return nil
}

// drive advances the simulated clock: bytes arrive at the download rate,
// the engine plays forward in real time, and lifecycle notifications fire
// at the right moments.
func (p *Pipeline) drive(ctx context.Context) {
	events := p.Engine.Events()
	if events == nil {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(p.profile.MetadataDelay):
	}
	p.Engine.SetDuration(p.profile.Duration.Microseconds())
	events.MetadataLoaded(ports.MediaInfo{HasAudio: true, HasVideo: true})

	ticker := time.NewTicker(p.profile.Tick)
	defer ticker.Stop()

	var downloaded int64
	servicedSeeks := 0
	bytesPerTick := p.profile.DownloadBytesPerSec * int64(p.profile.Tick) / int64(time.Second)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if p.Controller.IsShutdown() {
			return
		}

		if downloaded < p.profile.SizeBytes {
			step := bytesPerTick
			if remaining := p.profile.SizeBytes - downloaded; step > remaining {
				step = remaining
			}
			downloaded += step
			p.Resource.SetCachedEnd(downloaded)
			p.Resource.SetTell(downloaded)
			p.Controller.NotifyBytesDownloaded(step)
			if downloaded == p.profile.SizeBytes {
				p.Controller.NotifyDownloadEnded(nil)
			}
		}

		if p.Engine.IsPlaying() {
			pos := p.Engine.CurrentTimeUS() + p.profile.Tick.Microseconds()
			end := p.profile.Duration.Microseconds()
			if pos >= end {
				p.Engine.AdvanceTo(end)
				p.Engine.SetCompleted(true)
				events.PlayingStateChanged()
				events.PlaybackEnded()
				p.logger.Debug().Msg("simulated playback reached end")
				continue
			}
			p.Engine.AdvanceTo(pos)
			p.Controller.UpdatePlaybackOffset(pos * p.profile.SizeBytes / end)
			events.PlaybackPositionChanged()
		}

		// Service seeks instantly: the engine repositioned synchronously,
		// so acknowledge start and completion in one tick.
		if targets := p.Engine.SeekTargets(); len(targets) > servicedSeeks {
			servicedSeeks = len(targets)
			events.SeekingStarted()
			if targets[len(targets)-1].TimeUS >= p.profile.Duration.Microseconds() {
				events.SeekingStoppedAtEnd()
			} else {
				events.SeekingStopped()
			}
		}
	}
}
