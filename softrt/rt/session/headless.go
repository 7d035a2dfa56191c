package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// BatchOptions configures a headless run that writes numbered PNG frames.
type BatchOptions struct {
	Frames int
	OutDir string
	// Dt is the simulated time between frames in seconds.
	Dt float32
	// Tour warps to each planet in turn, spreading the visits evenly over
	// the run. Without it the camera stays where the config put it.
	Tour bool
	// Encoders bounds how many frames are PNG-encoded at once.
	Encoders int
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
}

func (o *BatchOptions) normalize() {
	if o.Dt <= 0 {
		o.Dt = 1.0 / 30
	}
	if o.Encoders <= 0 {
		o.Encoders = 2
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
}

// FramePath is where frame i of a batch is written.
func FramePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
}

// RenderBatch steps and renders opts.Frames frames. Encoding runs behind
// rendering on copies of the frame; the first failure cancels the rest.
func (s *Session) RenderBatch(ctx context.Context, opts BatchOptions) error {
	opts.normalize()
	if opts.Frames <= 0 {
		return fmt.Errorf("frame count must be positive, got %d", opts.Frames)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	pb := progressbar.NewOptions(opts.Frames,
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
	)
	defer pb.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Encoders)

	planets := s.System.Planets()
	leg := 0
	if opts.Tour && len(planets) > 0 {
		leg = max(opts.Frames/len(planets), 1)
	}

	for i := 0; i < opts.Frames; i++ {
		if gctx.Err() != nil {
			break
		}
		if leg > 0 && i%leg == 0 {
			s.WarpToPlanet(i/leg%len(planets)+1, false)
		}
		s.Step(opts.Dt, Input{})
		st := s.Render()

		frame, path := s.Frame.Clone(), FramePath(opts.OutDir, i)
		g.Go(func() error {
			if err := frame.SavePNG(path); err != nil {
				return err
			}
			return pb.Add(1)
		})
		s.log.Debugf("frame %d: %d bodies, %d triangles, %s", i, st.Drawn, st.Triangles, st.Elapsed)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Infof("wrote %d frames to %s\n%s", opts.Frames, opts.OutDir, s.Profiler.StatsString())
	return nil
}
