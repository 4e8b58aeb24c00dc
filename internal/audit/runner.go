package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/a11yaudit/a11yaudit/internal/model"
)

var (
	// ErrNoURLs is returned when Run is called with an empty URL list.
	ErrNoURLs = errors.New("no URLs to scan")

	// ErrAlreadyRunning is returned when Run is called while a previous
	// Run on the same Runner has not finished.
	ErrAlreadyRunning = errors.New("a scan is already running")
)

// State describes where a scan run stands.
type State int

const (
	// StateIdle means no run has started.
	StateIdle State = iota

	// StateRunning means the scan loop is in progress.
	StateRunning

	// StateCompleted means every URL was processed.
	StateCompleted

	// StateCancelled means the run stopped early at a loop boundary.
	StateCancelled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Scanner produces raw accessibility violations for a single page.
type Scanner interface {
	// Scan audits one page and returns its violations. An empty slice
	// with a nil error means the page passed.
	Scan(ctx context.Context, url string) ([]model.RawViolation, error)
}

// ProgressFunc is invoked after each URL finishes, with the number of
// URLs processed so far and the total.
type ProgressFunc func(completed, total int)

// Result is the immutable outcome of one run. The slices are owned by
// the caller; the Runner keeps no reference to them after Run returns.
type Result struct {
	// Raw holds every violation record in scan order, including
	// synthetic failure records.
	Raw []model.RawViolation

	// Entries is the aggregated view of Raw.
	Entries []model.AggregateEntry

	// State is Completed or Cancelled.
	State State

	// ScannedAt is when the run started.
	ScannedAt time.Time
}

// Runner executes scans sequentially over a URL list.
//
// Design decision: URLs are scanned one at a time rather than in
// parallel.
//  1. A single browser instance behaves deterministically; parallel
//     tabs fight over CPU and skew axe timing-sensitive checks.
//  2. Sequential order makes progress reporting and result ordering
//     trivially reproducible.
type Runner struct {
	scanner  Scanner
	logger   *slog.Logger
	progress ProgressFunc

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	running bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for scan progress and failures.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithProgress sets a callback invoked after each URL is processed.
func WithProgress(fn ProgressFunc) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a Runner that scans with the given scanner.
func NewRunner(scanner Scanner, opts ...RunnerOption) *Runner {
	r := &Runner{
		scanner: scanner,
		state:   StateIdle,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// State returns the current run state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cancel requests that the current run stop. The loop observes the
// request at the next URL boundary; the in-flight page scan is allowed
// to finish. Calling Cancel when no run is active is a no-op.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Run scans every URL in order and returns the collected results.
//
// A scanner failure on one URL does not abort the run: a synthetic
// critical record is appended for that URL and the loop moves on.
// Cancellation, via ctx or Cancel, is honored between URLs only, so the
// result contains complete data for every URL processed before the
// stop. Run returns ErrNoURLs for an empty list and ErrAlreadyRunning
// if invoked concurrently on the same Runner.
func (r *Runner) Run(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	runCtx, cancel, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	scannedAt := time.Now()
	raw := make([]model.RawViolation, 0, len(urls))
	finalState := StateCompleted

	total := len(urls)
	for i, url := range urls {
		if runCtx.Err() != nil {
			r.logger.Warn("scan cancelled",
				"completed", i,
				"total", total,
			)
			finalState = StateCancelled
			break
		}

		r.logger.Info("scanning page", "url", url, "position", i+1, "total", total)
		// The scanner never sees cancellation: an interrupted page would
		// surface as a spurious failure record. The in-flight scan runs to
		// completion and the loop stops at the next boundary check. The
		// scanner's own page timeout still bounds each call.
		violations, err := r.scanner.Scan(context.WithoutCancel(runCtx), url)
		if err != nil {
			r.logger.Warn("page scan failed, recording failure",
				"url", url,
				"error", err,
			)
			raw = append(raw, model.NewScanFailure(url, err))
		} else {
			raw = append(raw, violations...)
		}

		if r.progress != nil {
			r.progress(i+1, total)
		}
	}

	r.finish(finalState)

	return &Result{
		Raw:       raw,
		Entries:   model.Aggregate(raw),
		State:     finalState,
		ScannedAt: scannedAt,
	}, nil
}

// begin transitions the Runner into the running state, rejecting
// concurrent runs.
func (r *Runner) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil, nil, ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.state = StateRunning
	r.cancel = cancel

	return runCtx, cancel, nil
}

// finish records the terminal state and releases the running slot.
func (r *Runner) finish(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.state = state
	r.cancel = nil
}
