package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scenerender/internal/config"
	"github.com/ivlev/scenerender/internal/encoder"
	"github.com/ivlev/scenerender/internal/raster"
	"github.com/ivlev/scenerender/internal/scene"
	"github.com/ivlev/scenerender/internal/system"
)

// Logger receives progress lines; *console.Console implements it.
type Logger interface {
	Infof(format string, args ...any)
	Progressf(format string, args ...any)
	Warnf(format string, args ...any)
}

type RenderProject struct {
	Config   *config.Config
	Scene    *scene.Description
	Encoder  encoder.Encoder
	Log      Logger
	renderer *raster.Renderer
}

func NewRenderProject(cfg *config.Config, desc *scene.Description, enc encoder.Encoder, log Logger) *RenderProject {
	return &RenderProject{
		Config:   cfg,
		Scene:    desc,
		Encoder:  enc,
		Log:      log,
		renderer: raster.NewRenderer(system.NewBufferPool()),
	}
}

// Output describes one written image file.
type Output struct {
	Path       string
	Image      string
	Resolution scene.Resolution
	Width      int
	Height     int
}

// Report summarises a run. Files are listed resolution by resolution, in
// description order, whatever order the workers finished in.
type Report struct {
	Files      []Output
	Pixels     int64
	Total      time.Duration
	Rendering  time.Duration // summed over workers
	Encoding   time.Duration // summed over workers
	MaxWorkers int
}

// Run renders every image at every resolution. Resolutions are processed
// one after another; the images of a resolution may be rendered in
// parallel. The first error stops the run and is returned together with
// the report of what was written so far.
func (p *RenderProject) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	var rendering, encoding atomic.Int64

	p.Log.Infof("Scene: %d image(s) x %d resolution(s) -> %s", len(p.Scene.Images), len(p.Scene.Resolutions), p.Scene.OutputPath)

	for _, res := range p.Scene.Resolutions {
		dir := filepath.Join(p.Scene.OutputPath, res.DirName())
		if err := system.EnsureDir(dir); err != nil {
			report.Total = time.Since(start)
			return report, err
		}

		workers := p.workers(res)
		if workers > report.MaxWorkers {
			report.MaxWorkers = workers
		}

		outputs := make([]*Output, len(p.Scene.Images))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range p.Scene.Images {
			i := i // per-iteration copy; go directive is below 1.22
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := p.renderOne(&p.Scene.Images[i], res, dir, &rendering, &encoding)
				if err != nil {
					return err
				}
				outputs[i] = out
				return nil
			})
		}
		err := g.Wait()

		for _, out := range outputs {
			if out != nil {
				report.Files = append(report.Files, *out)
				report.Pixels += int64(out.Width) * int64(out.Height)
			}
		}
		if err != nil {
			report.Rendering = time.Duration(rendering.Load())
			report.Encoding = time.Duration(encoding.Load())
			report.Total = time.Since(start)
			return report, err
		}
	}

	report.Rendering = time.Duration(rendering.Load())
	report.Encoding = time.Duration(encoding.Load())
	report.Total = time.Since(start)
	return report, nil
}

func (p *RenderProject) renderOne(img *scene.Image, res scene.Resolution, dir string, rendering, encoding *atomic.Int64) (*Output, error) {
	w, h := raster.Dimensions(*img, res)
	if err := encoder.CheckSize(p.Encoder, w, h); err != nil {
		return nil, fmt.Errorf("image %q at %s: %w", img.Name, res, err)
	}

	t0 := time.Now()
	buf, err := p.renderer.Render(*img, res)
	if err != nil {
		return nil, fmt.Errorf("image %q at %s: %w", img.Name, res, err)
	}
	defer p.renderer.Release(buf)
	t1 := time.Now()
	rendering.Add(int64(t1.Sub(t0)))

	path := filepath.Join(dir, img.Name+"."+p.Encoder.Extension())
	if err := p.Encoder.Encode(path, w, h, 4, buf.Pix); err != nil {
		return nil, fmt.Errorf("image %q at %s: %w", img.Name, res, err)
	}
	encoding.Add(int64(time.Since(t1)))

	p.Log.Progressf("Ready: %s (%dx%d)", path, w, h)
	return &Output{Path: path, Image: img.Name, Resolution: res, Width: w, Height: h}, nil
}

// workers bounds the parallelism for one resolution by the configured
// limit, the memory the largest canvas needs and the number of images.
func (p *RenderProject) workers(res scene.Resolution) int {
	var largest uint64
	for _, img := range p.Scene.Images {
		w, h := raster.Dimensions(img, res)
		if n := uint64(w) * uint64(h) * 4; n > largest {
			largest = n
		}
	}
	n := system.WorkerBudget(p.Config.Workers, largest, p.Log.Warnf)
	if n > len(p.Scene.Images) {
		n = len(p.Scene.Images)
	}
	return max(n, 1)
}

// Print writes the performance summary shown by -stats.
func (r *Report) Print(w io.Writer, build string) {
	fps := 0.0
	if s := r.Total.Seconds(); s > 0 {
		fps = float64(len(r.Files)) / s
	}
	fmt.Fprintf(w,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Files: %d (%d pixels)\n"+
			"Workers: %d\n"+
			"Total Time: %.3fs\n"+
			"Rendering: %.3fs\n"+
			"Encoding: %.3fs\n"+
			"Images/s: %.2f\n"+
			"----------------------------\n",
		build, len(r.Files), r.Pixels, r.MaxWorkers, r.Total.Seconds(), r.Rendering.Seconds(), r.Encoding.Seconds(), fps,
	)
}
