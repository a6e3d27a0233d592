// Package listing is the reference adapter: a generic portal-listing
// scraper driven by per-portal CSS selectors. It covers portals that
// publish applications as an HTML result table; anything richer needs a
// dedicated adapter registered directly for the source.
package listing

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/policy/ratelimit"
	"github.com/cividex/portalwatch/internal/portal"
)

// Selectors tells the adapter where records live on a listing page.
type Selectors struct {
	Row    string
	Fields map[string]string
}

// Config controls adapter behavior for one portal type.
type Config struct {
	UserAgent       string
	Timeout         time.Duration
	MinRequestGap   time.Duration
	MaxRetries      int
	Selectors       Selectors
	HistoricalQuery string
	// Limiter is shared across adapters so sources behind one host
	// share a token bucket. When nil, the adapter gets its own.
	Limiter *ratelimit.Limiter
}

// Adapter implements portal.Adapter for one source over a listing portal.
type Adapter struct {
	src     catalog.Source
	cfg     Config
	limiter *ratelimit.Limiter
	retry   *portal.RetryPolicy
	now     func() time.Time
}

// New builds an Adapter for the given source.
func New(src catalog.Source, cfg Config) *Adapter {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "portalwatch/1.0 (+https://github.com/cividex/portalwatch)"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinRequestGap <= 0 {
		cfg.MinRequestGap = 2 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{MinGap: cfg.MinRequestGap})
	}
	return &Adapter{
		src:     src,
		cfg:     cfg,
		limiter: limiter,
		retry:   portal.NewRetryPolicyWith(cfg.MaxRetries, time.Second, 30*time.Second),
		now:     time.Now,
	}
}

// ScrapeActive fetches the portal's current listing page.
func (a *Adapter) ScrapeActive(ctx context.Context) ([]portal.RawRecord, error) {
	return a.scrape(ctx, a.src.PortalURL)
}

// ScrapeHistorical fetches the listing constrained to a date range. A zero
// range defaults to the trailing year.
func (a *Adapter) ScrapeHistorical(ctx context.Context, dr portal.DateRange) ([]portal.RawRecord, error) {
	if dr.IsZero() {
		end := a.now()
		dr = portal.DateRange{Start: end.AddDate(-1, 0, 0), End: end}
	}
	target := a.src.PortalURL
	if a.cfg.HistoricalQuery != "" {
		sep := "?"
		if u, err := url.Parse(target); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target = fmt.Sprintf("%s%s%s&from=%s&to=%s",
			target, sep, a.cfg.HistoricalQuery,
			dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
	}
	return a.scrape(ctx, target)
}

// Health probes the portal URL and reports reachability with timing.
func (a *Adapter) Health(ctx context.Context) portal.HealthStatus {
	start := a.now()
	status := portal.HealthStatus{CheckedAt: start}

	c := a.newCollector()
	var visited bool
	c.OnResponse(func(r *colly.Response) {
		visited = r.StatusCode < 500
		if !visited {
			status.Message = fmt.Sprintf("portal returned HTTP %d", r.StatusCode)
			status.ErrorType = "http_error"
		}
	})
	err := a.visit(ctx, c, a.src.PortalURL)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Message = err.Error()
		status.ErrorType = "unreachable"
		return status
	}
	status.Healthy = visited
	if status.Healthy {
		status.Message = "ok"
	}
	return status
}

func (a *Adapter) scrape(ctx context.Context, target string) ([]portal.RawRecord, error) {
	var records []portal.RawRecord

	c := a.newCollector()
	c.OnHTML(a.cfg.Selectors.Row, func(e *colly.HTMLElement) {
		data := make(map[string]any, len(a.cfg.Selectors.Fields))
		for field, sel := range a.cfg.Selectors.Fields {
			if v := e.ChildText(sel); v != "" {
				data[field] = v
			}
		}
		if len(data) == 0 {
			return
		}
		records = append(records, portal.RawRecord{
			Data:      data,
			SourceURL: e.Request.URL.String(),
			ScrapedAt: a.now().UTC(),
		})
	})

	if err := a.visit(ctx, c, target); err != nil {
		return nil, err
	}
	return records, nil
}

// visit runs one page fetch under the per-instance request gap and the
// operation-level retry policy.
func (a *Adapter) visit(ctx context.Context, c *colly.Collector, target string) error {
	return a.retry.Do(ctx, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx, target); err != nil {
			return err
		}
		if err := c.Visit(target); err != nil {
			return fmt.Errorf("visit %s: %w", target, err)
		}
		c.Wait()
		return ctx.Err()
	})
}

func (a *Adapter) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = a.cfg.UserAgent
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(a.cfg.Timeout)
	return c
}
