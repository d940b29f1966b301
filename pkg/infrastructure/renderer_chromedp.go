package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpRenderer turns rendered portfolio HTML into PNG snapshots and
// PDFs with headless Chrome.
type ChromedpRenderer struct {
	execPath string
	timeout  time.Duration
	log      *zap.Logger
}

func NewChromedpRenderer(execPath string, timeout time.Duration, log *zap.Logger) *ChromedpRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChromedpRenderer{execPath: execPath, timeout: timeout, log: log}
}

// Snapshot captures the full page at the given viewport width.
func (r *ChromedpRenderer) Snapshot(ctx context.Context, html string, width int) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, html,
		chromedp.EmulateViewport(int64(width), 900),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot at %dpx: %w", width, err)
	}
	return buf, nil
}

// PDF prints the page on A4 with backgrounds.
func (r *ChromedpRenderer) PDF(ctx context.Context, html string) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		// A4: 210mm x 297mm -> inches: 8.27 x 11.69
		buf, _, err = page.PrintToPDF().WithPrintBackground(true).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return buf, nil
}

func (r *ChromedpRenderer) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	tctx, cancelT := context.WithTimeout(cctx, r.timeout)
	defer cancelT()

	tmpDir, err := os.MkdirTemp("", "jobfolio-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return err
	}

	start := time.Now()
	all := append([]chromedp.Action{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}, actions...)
	if err := chromedp.Run(tctx, all...); err != nil {
		return err
	}
	r.log.Debug("chrome render", zap.Duration("duration", time.Since(start)))
	return nil
}
