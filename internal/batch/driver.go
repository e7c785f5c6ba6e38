package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"svnbatch/internal/domain"
	"svnbatch/internal/resultlog"
	"svnbatch/internal/svn"
)

var (
	// ErrAlreadyRunning is returned when an operation is requested while another is active
	ErrAlreadyRunning = errors.New("an operation is already running")
	// ErrNoPaths is returned when a batch is started with nothing to process
	ErrNoPaths = errors.New("no paths to process")
	// ErrInvalidOperation is returned for operations svn batch does not support
	ErrInvalidOperation = errors.New("invalid operation")
)

// State is the externally visible driver state
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Status is a snapshot of the batch in progress
type Status struct {
	State           State
	Operation       domain.Operation
	Current         int // index of the next path to process
	Total           int
	CancelRequested bool
}

// Summary describes a finished batch
type Summary struct {
	Operation domain.Operation
	Processed int
	Failed    int
	Total     int
	Cancelled bool
}

// Progress is reported before each path is processed
type Progress struct {
	Operation domain.Operation
	Current   int
	Total     int
	Path      string
}

// ProgressSink receives progress updates. Returning true requests cancellation;
// the path being reported is still processed.
type ProgressSink interface {
	Progress(p Progress) (cancel bool)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(p Progress) bool

func (f ProgressFunc) Progress(p Progress) bool { return f(p) }

// Option configures a Driver
type Option func(*Driver)

// WithProgress sets the progress sink
func WithProgress(sink ProgressSink) Option {
	return func(d *Driver) { d.sink = sink }
}

// WithCompletion sets a hook called after a batch finishes without being cancelled
func WithCompletion(fn func(Summary)) Option {
	return func(d *Driver) { d.onComplete = fn }
}

// WithDirCheck replaces the working-copy existence check
func WithDirCheck(fn func(path string) error) Option {
	return func(d *Driver) { d.checkDir = fn }
}

// Driver runs one svn operation over a list of paths, one path per Step.
// Step must not be called concurrently with itself; every other method is
// safe to call from any goroutine, including while a Step is blocked on svn.
type Driver struct {
	runner     svn.Runner
	results    *resultlog.Log
	sink       ProgressSink
	onComplete func(Summary)
	checkDir   func(path string) error

	mu      sync.Mutex
	state   State
	single  bool // a RunSingle call is in flight
	op      domain.Operation
	paths   []string
	current int
	failed  int
	cancel  bool
	last    Summary
}

// New creates an idle driver writing to results
func New(runner svn.Runner, results *resultlog.Log, opts ...Option) *Driver {
	d := &Driver{
		runner:   runner,
		results:  results,
		checkDir: svn.CheckWorkingCopy,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins a batch over a snapshot of paths and clears the result log
func (d *Driver) Start(op domain.Operation, paths []string) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Idle || d.single {
		return ErrAlreadyRunning
	}
	if len(paths) == 0 {
		return ErrNoPaths
	}

	d.state = Running
	d.op = op
	d.paths = append([]string(nil), paths...)
	d.current = 0
	d.failed = 0
	d.cancel = false
	d.results.Clear()

	log.Printf("Batch %s started for %d paths", op, len(paths))
	return nil
}

// Step processes at most one path. It returns true while the batch is still
// running and another Step is needed.
func (d *Driver) Step(ctx context.Context) bool {
	d.mu.Lock()
	if d.state != Running {
		d.mu.Unlock()
		return false
	}
	if d.cancel || d.current >= len(d.paths) {
		summary := d.finishLocked()
		d.mu.Unlock()
		d.notify(summary)
		return false
	}
	op, index, total := d.op, d.current, len(d.paths)
	path := d.paths[index]
	sink := d.sink
	d.mu.Unlock()

	// The svn call happens without the lock so Cancel and Status stay responsive
	cancelled := false
	if sink != nil {
		cancelled = sink.Progress(Progress{Operation: op, Current: index, Total: total, Path: path})
	}
	ok := d.process(ctx, op, path)

	d.mu.Lock()
	if cancelled {
		d.cancel = true
	}
	if !ok {
		d.failed++
	}
	d.current++
	if d.current < len(d.paths) && !d.cancel {
		d.mu.Unlock()
		return true
	}
	summary := d.finishLocked()
	d.mu.Unlock()
	d.notify(summary)
	return false
}

// process runs one path and records the line; it returns false on any failure
func (d *Driver) process(ctx context.Context, op domain.Operation, path string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("svn %s %s panicked: %v\nStack: %s", op, path, r, debug.Stack())
			d.results.Appendf("operation failed %s: %v", path, r)
			ok = false
		}
	}()

	if err := d.checkDir(path); err != nil {
		log.Printf("Skipping %s: %v", path, err)
		d.results.Appendf("operation failed %s: %v", path, err)
		return false
	}

	outcome := d.runner.Run(ctx, op, path)
	d.results.Appendf("%s %s: %s", op, path, outcome)
	return outcome.OK()
}

// finishLocked returns the driver to Idle and writes the summary line
func (d *Driver) finishLocked() Summary {
	summary := Summary{
		Operation: d.op,
		Processed: d.current,
		Failed:    d.failed,
		Total:     len(d.paths),
		Cancelled: d.cancel,
	}
	d.state = Idle
	d.last = summary
	d.paths = nil
	d.current = 0
	d.failed = 0
	d.cancel = false

	if summary.Cancelled {
		d.results.Appendf("operation cancelled (%d/%d paths processed)", summary.Processed, summary.Total)
		log.Printf("Batch %s cancelled after %d/%d paths", summary.Operation, summary.Processed, summary.Total)
		return summary
	}

	line := fmt.Sprintf("all operations completed, %d %s processed", summary.Processed, plural(summary.Processed, "path", "paths"))
	if summary.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", summary.Failed)
	}
	d.results.Append(line)
	log.Printf("Batch %s completed: %d processed, %d failed", summary.Operation, summary.Processed, summary.Failed)
	return summary
}

// notify runs the completion hook for batches that were not cancelled.
// Called without the lock held.
func (d *Driver) notify(summary Summary) {
	if d.onComplete != nil && !summary.Cancelled {
		d.onComplete(summary)
	}
}

// Cancel asks the running batch to stop at the next step boundary.
// The command already running is allowed to finish.
func (d *Driver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Running && !d.cancel {
		d.cancel = true
		log.Printf("Batch %s cancellation requested at %d/%d", d.op, d.current, len(d.paths))
	}
}

// Status returns the current batch state
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		State:           d.state,
		Operation:       d.op,
		Current:         d.current,
		Total:           len(d.paths),
		CancelRequested: d.cancel,
	}
}

// Busy reports whether a batch or a single-path operation is in flight
func (d *Driver) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state != Idle || d.single
}

// LastSummary returns the summary of the most recently finished batch
func (d *Driver) LastSummary() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// RunToCompletion steps the current batch until it finishes.
// If ctx is cancelled the batch is cancelled cooperatively.
func (d *Driver) RunToCompletion(ctx context.Context) Summary {
	for d.Step(ctx) {
		if ctx.Err() != nil {
			d.Cancel()
		}
	}
	return d.LastSummary()
}

// RunSingle runs op against one path outside of any batch. A missing
// directory is reported as an error without invoking svn.
func (d *Driver) RunSingle(ctx context.Context, op domain.Operation, path string) (svn.Outcome, error) {
	if !op.Valid() {
		return svn.Outcome{}, fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}
	if err := d.checkDir(path); err != nil {
		return svn.Outcome{}, err
	}

	d.mu.Lock()
	if d.state != Idle || d.single {
		d.mu.Unlock()
		return svn.Outcome{}, ErrAlreadyRunning
	}
	d.single = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.single = false
		d.mu.Unlock()
	}()

	outcome := d.runGuarded(ctx, op, path)
	d.results.Appendf("%s %s: %s", op, path, outcome)
	return outcome, nil
}

// runGuarded runs one svn command and turns a runner panic into an
// Exception outcome
func (d *Driver) runGuarded(ctx context.Context, op domain.Operation, path string) (outcome svn.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("svn %s %s panicked: %v\nStack: %s", op, path, r, debug.Stack())
			outcome = svn.Outcome{Kind: svn.Exception, Message: fmt.Sprint(r), ExitCode: -1}
		}
	}()
	return d.runner.Run(ctx, op, path)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
