package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/a11yaudit/a11yaudit/internal/model"
)

// Default axe engine settings.
const (
	// DefaultAxeSourceURL serves the pinned axe-core engine build. The
	// script is fetched once per scanner and injected into every page.
	DefaultAxeSourceURL = "https://cdn.jsdelivr.net/npm/axe-core@4.10.2/axe.min.js"

	// DefaultPageTimeout bounds a single page's navigation plus audit.
	DefaultPageTimeout = 60 * time.Second
)

// DefaultWCAGTags selects the WCAG 2.0 A and AA rule sets.
var DefaultWCAGTags = []string{"wcag2a", "wcag2aa"}

// ErrScannerClosed is returned by Scan after Close has been called.
var ErrScannerClosed = errors.New("scanner is closed")

// AxeScanner audits pages with the axe-core engine in a headless Chrome
// instance. One browser is shared across Scan calls; each call opens a
// fresh tab so page state never leaks between audits.
type AxeScanner struct {
	sourceURL   string
	tags        []string
	pageTimeout time.Duration
	logger      *slog.Logger
	httpClient  *http.Client

	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc

	sourceOnce sync.Once
	axeSource  string
	sourceErr  error

	mu     sync.Mutex
	closed bool
}

// AxeOption configures an AxeScanner.
type AxeOption func(*AxeScanner)

// WithAxeSourceURL overrides where the axe-core script is fetched from.
func WithAxeSourceURL(url string) AxeOption {
	return func(s *AxeScanner) {
		s.sourceURL = url
	}
}

// WithWCAGTags sets the axe rule tags to audit against.
func WithWCAGTags(tags []string) AxeOption {
	return func(s *AxeScanner) {
		if len(tags) > 0 {
			s.tags = tags
		}
	}
}

// WithPageTimeout bounds each page's navigation and audit.
func WithPageTimeout(d time.Duration) AxeOption {
	return func(s *AxeScanner) {
		if d > 0 {
			s.pageTimeout = d
		}
	}
}

// WithScanLogger sets the logger for scan diagnostics.
func WithScanLogger(logger *slog.Logger) AxeOption {
	return func(s *AxeScanner) {
		s.logger = logger
	}
}

// WithAxeHTTPClient sets the client used to fetch the axe-core script,
// mainly for tests.
func WithAxeHTTPClient(client *http.Client) AxeOption {
	return func(s *AxeScanner) {
		s.httpClient = client
	}
}

// NewAxeScanner launches a headless browser and returns a scanner bound
// to it. Callers must Close the scanner to release the browser.
func NewAxeScanner(ctx context.Context, opts ...AxeOption) (*AxeScanner, error) {
	s := &AxeScanner{
		sourceURL:   DefaultAxeSourceURL,
		tags:        DefaultWCAGTags,
		pageTimeout: DefaultPageTimeout,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	s.browserCtx, s.browserStop = chromedp.NewContext(s.allocCtx)

	// Start the browser eagerly so launch failures surface here rather
	// than on the first page scan.
	if err := chromedp.Run(s.browserCtx); err != nil {
		s.allocCancel()
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}

	return s, nil
}

// Close shuts down the shared browser. Scan calls after Close fail with
// ErrScannerClosed.
func (s *AxeScanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.browserStop()
	s.allocCancel()
}

// axeNode is one offending element within an axe finding.
type axeNode struct {
	HTML   string   `json:"html"`
	Target []string `json:"target"`
}

// axeViolation is one rule finding from axe.run.
type axeViolation struct {
	ID          string    `json:"id"`
	Impact      string    `json:"impact"`
	Description string    `json:"description"`
	Help        string    `json:"help"`
	Nodes       []axeNode `json:"nodes"`
}

// axeResult is the subset of the axe.run resolution value the scanner
// consumes.
type axeResult struct {
	Violations []axeViolation `json:"violations"`
}

// Scan navigates a fresh tab to the URL, injects axe-core, runs the
// audit, and returns one raw record per offending element. An empty
// slice means the page passed every selected rule.
func (s *AxeScanner) Scan(ctx context.Context, url string) ([]model.RawViolation, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScannerClosed
	}
	s.mu.Unlock()

	if err := s.ensureAxeSource(ctx); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, s.pageTimeout)
	defer cancelRun()

	// Honor caller cancellation even though the tab hangs off the
	// long-lived browser context.
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	var result axeResult
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(s.axeSource, nil),
		chromedp.Evaluate(s.auditExpression(), &result,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			},
		),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("audit %s: %w", url, err)
	}

	return s.convert(url, result), nil
}

// auditExpression builds the axe.run call restricted to the configured
// rule tags.
func (s *AxeScanner) auditExpression() string {
	tagsJSON, _ := json.Marshal(s.tags)
	return fmt.Sprintf(
		`axe.run(document, {runOnly: {type: "tag", values: %s}})`,
		string(tagsJSON),
	)
}

// convert flattens axe findings into per-element raw records, enriching
// each with the element identity fields the aggregation key needs.
func (s *AxeScanner) convert(url string, result axeResult) []model.RawViolation {
	var records []model.RawViolation
	for _, v := range result.Violations {
		priority := model.ParseSeverity(v.Impact)
		description := v.Description
		if description == "" {
			description = v.Help
		}

		for _, node := range v.Nodes {
			info := ExtractElementInfo(node.HTML)
			records = append(records, model.RawViolation{
				URL:            url,
				RuleID:         v.ID,
				Priority:       priority,
				Description:    description,
				ElementHTML:    node.HTML,
				ElementID:      info.ID,
				ElementClasses: info.Classes,
				Tag:            info.Tag,
				InnerText:      info.Text,
			})
		}
	}

	if len(records) > 0 {
		s.logger.Info("page audit found violations",
			"url", url,
			"rules", len(result.Violations),
			"elements", len(records),
		)
	} else {
		s.logger.Info("page audit passed", "url", url)
	}

	return records
}

// ensureAxeSource downloads the axe-core script on first use. The fetch
// result, success or failure, is cached for the scanner's lifetime.
func (s *AxeScanner) ensureAxeSource(ctx context.Context) error {
	s.sourceOnce.Do(func() {
		s.logger.Info("fetching axe-core engine", "url", s.sourceURL)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
		if err != nil {
			s.sourceErr = fmt.Errorf("build axe-core request: %w", err)
			return
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.sourceErr = fmt.Errorf("fetch axe-core: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			s.sourceErr = fmt.Errorf("fetch axe-core: unexpected status %d", resp.StatusCode)
			return
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			s.sourceErr = fmt.Errorf("read axe-core: %w", err)
			return
		}

		s.axeSource = string(body)
	})

	return s.sourceErr
}
