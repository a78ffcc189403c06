package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"loanbook/internal/cache"
	"loanbook/internal/core"
	applog "loanbook/internal/log"
)

// Composer renders the report charts and assembles them into a PDF.
type Composer struct {
	renderer ChartRenderer
	debugDir string
	logger   *applog.Logger
	now      func() time.Time
	newID    func() string
	panels   cache.Cache[[3]Panel]
}

type Option func(*Composer)

// WithDebugDir makes the composer also write each chart PNG to dir.
func WithDebugDir(dir string) Option {
	return func(c *Composer) { c.debugDir = dir }
}

func WithLogger(l *applog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l.WithComponent(applog.ComponentReport)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithPanelCache reuses rendered panels for snapshots whose chart inputs
// are identical. The PDF itself is always assembled fresh.
func WithPanelCache(c cache.Cache[[3]Panel]) Option {
	return func(comp *Composer) { comp.panels = c }
}

func NewComposer(renderer ChartRenderer, opts ...Option) *Composer {
	c := &Composer{
		renderer: renderer,
		logger:   applog.Default().WithComponent(applog.ComponentReport),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders the three charts concurrently and lays them out in
// PanelOrder. Any chart or PDF failure fails the whole report.
func (c *Composer) Compose(ctx context.Context, snap core.Snapshot) (*Bundle, error) {
	start := c.now()
	bundle := &Bundle{ID: c.newID(), GeneratedAt: start}

	panels, err := c.renderPanels(ctx, snap)
	if err != nil {
		c.logger.ErrorContext(ctx, "Chart rendering failed",
			applog.FieldReportID, bundle.ID,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeRender)
		return nil, err
	}
	bundle.Panels = panels

	if c.debugDir != "" {
		c.writeDebugImages(ctx, bundle.Panels)
	}

	pdf, err := assemblePDF(bundle.Panels, start)
	if err != nil {
		c.logger.ErrorContext(ctx, "PDF assembly failed",
			applog.FieldReportID, bundle.ID,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeRender)
		return nil, err
	}
	bundle.PDF = pdf

	c.logger.DebugContext(ctx, "Report composed",
		applog.FieldReportID, bundle.ID,
		applog.FieldReportBytes, len(pdf),
		applog.FieldDuration, c.now().Sub(start).Milliseconds())
	return bundle, nil
}

func (c *Composer) renderPanels(ctx context.Context, snap core.Snapshot) ([3]Panel, error) {
	var key string
	if c.panels != nil {
		key = panelKey(snap)
		if panels, ok := c.panels.Get(key); ok {
			c.logger.DebugContext(ctx, "Reusing cached report panels")
			return panels, nil
		}
	}

	var panels [3]Panel
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range PanelOrder {
		g.Go(func() error {
			img, err := c.render(gctx, kind, snap)
			if err != nil {
				return fmt.Errorf("render %s: %w", kind, err)
			}
			panels[i] = Panel{Kind: kind, Title: kind.Title(), PNG: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [3]Panel{}, err
	}

	if c.panels != nil {
		c.panels.Set(key, panels)
	}
	return panels, nil
}

// panelKey fingerprints everything the charts are drawn from.
func panelKey(snap core.Snapshot) string {
	financed := make([]string, len(snap.MonthlyFinanced))
	for i, m := range snap.MonthlyFinanced {
		financed[i] = m.Decimal.String()
	}
	b, _ := json.Marshal(struct {
		Status   []core.StatusShare
		Monthly  core.MonthlySeries
		Financed []string
	}{snap.StatusDistribution, snap.Monthly, financed})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (c *Composer) render(ctx context.Context, kind PanelKind, snap core.Snapshot) ([]byte, error) {
	title := panelSpecs[kind].chartTitle
	switch kind {
	case PanelStatusDistribution:
		return c.renderer.StatusPie(ctx, title, snap.StatusDistribution)
	case PanelLoanActivity:
		return c.renderer.ActivityStackedBar(ctx, title, snap.Monthly)
	case PanelAmountFinanced:
		return c.renderer.FinancedBar(ctx, title, snap.MonthlyFinanced)
	default:
		return nil, fmt.Errorf("unknown panel kind %d", kind)
	}
}

// writeDebugImages is best effort; failures are only logged.
func (c *Composer) writeDebugImages(ctx context.Context, panels [3]Panel) {
	if err := os.MkdirAll(c.debugDir, 0o755); err != nil {
		c.logger.WarnContext(ctx, "Cannot create report debug directory",
			"dir", c.debugDir, applog.FieldError, err)
		return
	}
	for _, p := range panels {
		path := filepath.Join(c.debugDir, p.Kind.Filename())
		if err := os.WriteFile(path, p.PNG, 0o644); err != nil {
			c.logger.WarnContext(ctx, "Cannot write report debug image",
				"path", path, applog.FieldError, err)
		}
	}
}
