// Command portfolio-preview renders a portfolio document from disk for
// every device size, optionally re-rendering whenever the file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobfolio/internal/layout"
	"jobfolio/internal/render"
	"jobfolio/internal/usecase"
	infra "jobfolio/pkg/infrastructure"
)

type options struct {
	in      string
	outDir  string
	devices []layout.DeviceSize
	menu    bool
	png     bool
	chrome  string
}

func main() {
	var (
		opts    options
		devices string
		watch   bool
	)
	flag.StringVar(&opts.in, "in", "portfolio.yaml", "portfolio document (.json, .yaml or .yml)")
	flag.StringVar(&opts.outDir, "out", "preview", "output directory")
	flag.StringVar(&devices, "devices", "desktop,tablet,phone", "comma separated device sizes")
	flag.BoolVar(&opts.menu, "menu", false, "render the mobile menu expanded")
	flag.BoolVar(&opts.png, "png", false, "also write PNG snapshots with headless Chrome")
	flag.StringVar(&opts.chrome, "chrome", os.Getenv("CHROME_PATH"), "Chrome executable")
	flag.BoolVar(&watch, "watch", false, "re-render when the input changes")
	flag.Parse()

	for _, d := range strings.Split(devices, ",") {
		ds := layout.ParseDeviceSize(d)
		if ds == layout.DeviceNone {
			fmt.Fprintf(os.Stderr, "unknown device %q\n", d)
			os.Exit(2)
		}
		opts.devices = append(opts.devices, ds)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := renderAll(ctx, opts, logger); err != nil {
		logger.Error("render failed", zap.Error(err))
		if !watch {
			os.Exit(1)
		}
	}
	if watch {
		if err := watchInput(ctx, opts, logger); err != nil {
			logger.Fatal("watch failed", zap.Error(err))
		}
	}
}

// renderAll renders every device concurrently into opts.outDir.
func renderAll(ctx context.Context, opts options, logger *zap.Logger) error {
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	store := fileStore{}
	var snap *infra.ChromedpRenderer
	if opts.png {
		snap = infra.NewChromedpRenderer(opts.chrome, 0, logger.Named("chrome"))
	}
	base := strings.TrimSuffix(filepath.Base(opts.in), filepath.Ext(opts.in))
	renderer := render.NewRenderer(logger.Named("render"))

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range opts.devices {
		g.Go(func() error {
			v := usecase.NewView(store,
				usecase.WithDevice(d, layout.PreviewWidth(d)),
				usecase.WithRenderer(renderer),
				usecase.WithLogger(logger),
			)
			defer v.Close()
			if _, err := v.Load(gctx, opts.in); err != nil {
				return err
			}
			v.SetMenu(opts.menu)
			page, err := v.Render()
			if err != nil {
				return err
			}

			out := filepath.Join(opts.outDir, fmt.Sprintf("%s-%s.html", base, d))
			var sb strings.Builder
			if err := render.WriteHTML(&sb, page); err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			if err := os.WriteFile(out, []byte(sb.String()), 0o644); err != nil {
				return err
			}
			logger.Info("wrote preview",
				zap.String("device", string(d)),
				zap.String("path", out),
				zap.Int("skipped", len(page.Skipped)),
			)

			if snap != nil {
				png, err := snap.Snapshot(gctx, sb.String(), layout.PreviewWidth(d))
				if err != nil {
					return err
				}
				pngPath := strings.TrimSuffix(out, ".html") + ".png"
				if err := os.WriteFile(pngPath, png, 0o644); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func watchInput(ctx context.Context, opts options, logger *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// editors often replace the file, so watch its directory
	if err := w.Add(filepath.Dir(opts.in)); err != nil {
		return err
	}
	target := filepath.Clean(opts.in)
	logger.Info("watching", zap.String("path", target))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == target && ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				debounce = time.After(200 * time.Millisecond)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-debounce:
			debounce = nil
			if err := renderAll(ctx, opts, logger); err != nil {
				logger.Error("render failed", zap.Error(err))
			}
		}
	}
}
