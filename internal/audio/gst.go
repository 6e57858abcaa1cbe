package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// GstPlayer plays sources through a gst-launch child process. Raw byte
// sources are staged to a temp file first. One process per playback; Stop
// kills the process.
type GstPlayer struct {
	bin    string
	logger zerolog.Logger
}

// NewGstPlayer creates a player using the given gst-launch binary.
func NewGstPlayer(bin string, logger zerolog.Logger) *GstPlayer {
	return &GstPlayer{
		bin:    bin,
		logger: logger.With().Str("component", "gst-player").Logger(),
	}
}

type gstPlayback struct {
	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once

	mu      sync.Mutex
	stopped bool
}

func (p *gstPlayback) Done() <-chan error { return p.done }

func (p *gstPlayback) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.cancel()
	})
}

func (p *gstPlayback) wasStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Start launches a decode-and-play pipeline for the source.
func (g *GstPlayer) Start(ctx context.Context, src Source) (Playback, error) {
	location, cleanup, err := g.stageSource(src)
	if err != nil {
		return nil, err
	}

	pipeline := fmt.Sprintf(
		"%s ! decodebin ! audioconvert ! audioresample ! autoaudiosink sync=true",
		location,
	)

	cmdCtx, cancel := context.WithCancel(ctx)
	shellCmd := fmt.Sprintf("%s -q %s", g.bin, pipeline)
	cmd := exec.CommandContext(cmdCtx, "sh", "-c", shellCmd)

	if err := cmd.Start(); err != nil {
		cancel()
		cleanup()
		return nil, fmt.Errorf("start playback: %w", err)
	}

	g.logger.Debug().Int("pid", cmd.Process.Pid).Str("pipeline", pipeline).Msg("playback started")

	pb := &gstPlayback{cancel: cancel, done: make(chan error, 1)}
	go func() {
		defer cleanup()
		defer cancel()
		err := cmd.Wait()
		if pb.wasStopped() || cmdCtx.Err() != nil {
			// Forced stop is a normal completion, not an error.
			pb.done <- nil
			return
		}
		pb.done <- err
	}()

	return pb, nil
}

// stageSource returns a gst source element for the input, writing byte
// sources to a temp file. The cleanup func removes any staged file.
func (g *GstPlayer) stageSource(src Source) (string, func(), error) {
	noop := func() {}

	if len(src.Data) > 0 {
		f, err := os.CreateTemp("", "bragi-speech-*.audio")
		if err != nil {
			return "", noop, fmt.Errorf("stage speech audio: %w", err)
		}
		if _, err := f.Write(src.Data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", noop, fmt.Errorf("stage speech audio: %w", err)
		}
		f.Close()
		name := f.Name()
		return fmt.Sprintf("filesrc location=%q", name), func() { os.Remove(name) }, nil
	}

	if src.URL == "" {
		return "", noop, fmt.Errorf("empty audio source")
	}
	if strings.HasPrefix(src.URL, "http://") || strings.HasPrefix(src.URL, "https://") {
		return fmt.Sprintf("souphttpsrc location=%q is-live=false", src.URL), noop, nil
	}
	return fmt.Sprintf("filesrc location=%q", src.URL), noop, nil
}
