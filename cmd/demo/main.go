// Command demo wires the render graph and job system together and runs a
// handful of frames against them: a small graph of GBuffer, shadow and
// lighting passes, backed by a fiber-multiplexed job batch that simulates
// per-pass CPU work, presented either in an Ebiten window or as plain
// stderr diagnostics in -headless mode.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/term"

	"github.com/jamestiotio/vkframe/backend"
	"github.com/jamestiotio/vkframe/fiber"
	"github.com/jamestiotio/vkframe/jobsystem"
	"github.com/jamestiotio/vkframe/rendergraph"
	"github.com/jamestiotio/vkframe/renderpass"
	"github.com/jamestiotio/vkframe/resource"
)

func main() {
	var (
		headless   bool
		numWorkers int
		numFrames  int
		width      int
		height     int
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&headless, "headless", false, "run without opening a window, printing frame stats to stderr instead")
	flagSet.IntVar(&numWorkers, "workers", 4, "number of job system worker threads")
	flagSet.IntVar(&numFrames, "frames", 60, "number of frames to run before exiting")
	flagSet.IntVar(&width, "width", 0, "swapchain width (0 = auto)")
	flagSet.IntVar(&height, "height", 0, "swapchain height (0 = auto)")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: demo [-headless] [-workers N] [-frames N] [-width N] [-height N]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if width == 0 || height == 0 {
		width, height = resolveExtent(headless)
	}

	jobs, err := jobsystem.Create(numWorkers)
	if err != nil {
		fmt.Printf("Error: failed to create job system: %v\n", err)
		os.Exit(1)
	}
	defer jobs.Destroy()

	b := backend.NewHeadlessBackend(uint32(width), uint32(height))
	graph := rendergraph.NewGraph(b, func(alloc backend.Allocator, cache backend.PipelineCache, staging backend.StagingAllocator, w, h uint32) (backend.Encoder, error) {
		return backend.NewHeadlessEncoder(alloc, cache, staging, w, h), nil
	})

	tex := scaledDemoTexture(width, height)

	d := &demo{
		jobs:      jobs,
		graph:     graph,
		width:     width,
		height:    height,
		texture:   tex,
		maxFrames: numFrames,
	}

	if headless {
		d.runHeadless()
		return
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("render graph / job system demo")
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(d); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveExtent picks a swapchain extent when the caller didn't name one:
// the controlling terminal's cell size in -headless mode (the same "no
// real display, measure the terminal instead" idea as a terminal output
// backend), or a fixed default otherwise.
func resolveExtent(headless bool) (int, int) {
	const (
		defaultWidth  = 1280
		defaultHeight = 720
	)
	if !headless {
		return defaultWidth, defaultHeight
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth, defaultHeight
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return defaultWidth, defaultHeight
	}
	// A terminal cell is nowhere near a pixel; scale up so the extent is
	// still a plausible swapchain size instead of a handful of pixels.
	return cols * 8, rows * 16
}

// scaledDemoTexture builds a small procedurally striped source image and
// scales it up to the swapchain extent with a high-quality resampler,
// standing in for a loaded texture asset being fit to a declared resource
// extent before SampleTexture registers it.
func scaledDemoTexture(width, height int) *image.RGBA {
	const srcSize = 8
	src := image.NewRGBA(image.Rect(0, 0, srcSize, srcSize))
	for y := 0; y < srcSize; y++ {
		for x := 0; x < srcSize; x++ {
			if (x+y)%2 == 0 {
				src.Set(x, y, color.RGBA{R: 0x20, G: 0x60, B: 0xa0, A: 0xff})
			} else {
				src.Set(x, y, color.RGBA{R: 0xa0, G: 0x40, B: 0x20, A: 0xff})
			}
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// newDebugHandle mints a resource handle whose low bits come from a fresh
// UUID rather than a small running counter, so two demo runs never alias a
// resource purely by coincidence of declaration order.
func newDebugHandle(kind resource.Kind) resource.Handle {
	id := uuid.New()
	// Fold the UUID down to 64 bits; collision risk is irrelevant here,
	// this only needs to be distinguishable across runs, not globally unique.
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return resource.NewHandle(kind, v)
}

type demo struct {
	jobs      *jobsystem.JobManager
	graph     *rendergraph.Graph
	width     int
	height    int
	texture   *image.RGBA
	offscreen *ebiten.Image

	frameIndex uint64
	maxFrames  int
	lastStats  rendergraph.Stats
	quit       bool
}

// buildFrame stages this frame's passes into a fresh Module: a shadow pass
// and a GBuffer pass that each feed a lighting root, plus one deliberately
// unreferenced pass to exercise pruning.
func buildFrame(texHandle resource.Handle) *rendergraph.Module {
	m := rendergraph.NewModule()

	depth := resource.NewHandle(resource.KindImage, 1)
	albedo := resource.NewHandle(resource.KindImage, 2)
	shadowMap := resource.NewHandle(resource.KindImage, 3)
	litColor := resource.NewHandle(resource.KindImage, 4)

	shadow := renderpass.New("shadow", renderpass.TypeDraw, false, nil, nil, nil)
	_ = shadow.AddDepthStencilAttachment(shadowMap, resource.Info{})
	m.AddRenderPass(shadow)

	gbuffer := renderpass.New("gbuffer", renderpass.TypeDraw, false, nil, nil, nil)
	_ = gbuffer.AddColorAttachment(0, albedo, resource.Info{})
	_ = gbuffer.AddDepthStencilAttachment(depth, resource.Info{})
	_ = gbuffer.SampleTexture(texHandle, resource.Info{})
	m.AddRenderPass(gbuffer)

	lighting := renderpass.New("lighting", renderpass.TypeDraw, true, nil, nil, nil)
	_ = lighting.UseResource(albedo, resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageSampled})
	_ = lighting.UseResource(shadowMap, resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageSampled})
	_ = lighting.AddColorAttachment(0, litColor, resource.Info{})
	m.AddRenderPass(lighting)

	orphan := renderpass.New("unused-debug-overlay", renderpass.TypeDraw, false, nil, nil, nil)
	_ = orphan.UseResource(resource.NewHandle(resource.KindImage, 99), resource.Info{Kind: resource.KindImage, ImageUsage: resource.ImageUsageSampled})
	m.AddRenderPass(orphan)

	return m
}

// step runs one frame: stage passes, build the graph, dispatch a simulated
// CPU-work job per surviving pass through the job system, wait on them,
// then execute the graph against the headless backend.
func (d *demo) step() error {
	texHandle := newDebugHandle(resource.KindImage)

	d.graph.Reset()
	m := buildFrame(texHandle)
	m.SetupPasses(d.graph)

	if err := d.graph.Build(); err != nil {
		return errors.Wrap(err, "demo: build graph")
	}
	d.lastStats = d.graph.Stats()

	specs := make([]jobsystem.JobSpec, 0, len(d.graph.Passes()))
	for _, p := range d.graph.Passes() {
		passName := p.Name
		specs = append(specs, jobsystem.JobSpec{
			Fn: func(_ unsafe.Pointer) {
				simulateCullingWork(passName)
			},
		})
	}
	counter := d.jobs.RunJobs(specs)
	d.jobs.WaitForCounterAndFree(counter, 0)

	if err := d.graph.Execute(d.frameIndex); err != nil {
		return errors.Wrap(err, "demo: execute graph")
	}
	d.frameIndex++
	return nil
}

// simulateCullingWork stands in for the per-pass CPU work a real engine
// would run on a fiber (visibility culling, draw-call sorting). It yields
// once partway through, handing control back to its worker's dispatch
// loop; the fiber stays attached to that worker, which resumes it on its
// next dispatch rather than taking another job in the meantime.
func simulateCullingWork(passName string) {
	_ = passName
	fiber.Yield()
}

func (d *demo) runHeadless() {
	for d.frameIndex < uint64(d.maxFrames) {
		if err := d.step(); err != nil {
			fmt.Fprintf(os.Stderr, "frame %d: %v\n", d.frameIndex, err)
			return
		}
		fmt.Fprintf(os.Stderr, "frame %d: surviving=%d pruned=%d max_sort_key=%d\n",
			d.frameIndex-1, d.lastStats.Surviving, d.lastStats.Pruned, d.lastStats.MaxSortKey)
	}
}

func (d *demo) Update() error {
	if ebiten.IsWindowBeingClosed() || d.quit {
		return ebiten.Termination
	}
	if d.frameIndex >= uint64(d.maxFrames) {
		return nil
	}
	if err := d.step(); err != nil {
		fmt.Fprintf(os.Stderr, "frame %d: %v\n", d.frameIndex, err)
		d.quit = true
	}
	return nil
}

func (d *demo) Draw(screen *ebiten.Image) {
	if d.offscreen == nil {
		d.offscreen = ebiten.NewImageFromImage(d.texture)
	}
	screen.DrawImage(d.offscreen, nil)

	face := basicfont.Face7x13
	text.Draw(screen, fmt.Sprintf("frame %d", d.frameIndex), face, 8, 16, color.White)
	text.Draw(screen, fmt.Sprintf("surviving=%d pruned=%d max_sort_key=%d",
		d.lastStats.Surviving, d.lastStats.Pruned, d.lastStats.MaxSortKey), face, 8, 32, color.White)

	y := 48
	for _, p := range d.graph.Passes() {
		text.Draw(screen, fmt.Sprintf("  [%d] %s", p.SortKey, p.Name), face, 8, y, color.RGBA{0x80, 0xff, 0x80, 0xff})
		y += 16
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%0.2f fps", ebiten.ActualFPS()), 8, d.height-16)
}

func (d *demo) Layout(_, _ int) (int, int) {
	return d.width, d.height
}
