package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"svnbatch/internal/batch"
	"svnbatch/internal/domain"
	"svnbatch/internal/registry"
	"svnbatch/internal/resultlog"
)

// ErrAborted is returned when the confirmation prompt is declined
var ErrAborted = errors.New("aborted")

type batchOptions struct {
	all     bool
	paths   []string
	indexes []int
	yes     bool
	strict  bool
}

// batchRunner returns the handler for the cleanup and update commands
func batchRunner(op domain.Operation) func(a *App, args []string) error {
	return func(a *App, args []string) error {
		var opts batchOptions
		fs := pflag.NewFlagSet(string(op), pflag.ContinueOnError)
		fs.SetOutput(a.stderr)
		fs.BoolVar(&opts.all, "all", false, "every path that is included in batch operations (default)")
		fs.StringArrayVarP(&opts.paths, "path", "p", nil, "run on this folder (repeatable)")
		fs.IntSliceVarP(&opts.indexes, "index", "i", nil, "run on Path N (repeatable)")
		fs.BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
		fs.BoolVar(&opts.strict, "strict", false, "exit with an error when any path fails")
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		if fs.NArg() > 0 {
			return usagef("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		}
		explicit := len(opts.paths) > 0 || len(opts.indexes) > 0
		if opts.all && explicit {
			return usagef("--all cannot be combined with --path or --index")
		}
		return a.runOperation(op, opts)
	}
}

func (a *App) runOperation(op domain.Operation, opts batchOptions) error {
	reg, err := a.store.Load()
	if err != nil {
		return err
	}
	paths, err := a.targetPaths(reg, opts)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no paths selected for %s: %w", op, batch.ErrNoPaths)
	}

	runner, err := a.newRunner()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := resultlog.New()
	progress := batch.ProgressFunc(func(p batch.Progress) bool {
		a.errorf("[%d/%d] %s %s\n", p.Current+1, p.Total, p.Operation, p.Path)
		return false
	})
	driver := batch.New(runner, results,
		batch.WithProgress(progress),
		batch.WithCompletion(func(s batch.Summary) {
			a.errorf("%s finished: %d processed, %d failed\n", s.Operation.Title(), s.Processed, s.Failed)
		}),
	)

	// A single explicit path is a single-path operation
	if len(paths) == 1 && (len(opts.paths)+len(opts.indexes)) == 1 {
		outcome, err := driver.RunSingle(ctx, op, paths[0])
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, results.Render())
		if opts.strict && !outcome.OK() {
			return fmt.Errorf("%s %s: %s", op, paths[0], outcome.Kind)
		}
		return nil
	}

	if !opts.yes && a.cfg.UISettings.ConfirmBatch {
		if !a.confirm(fmt.Sprintf("%s all %d selected paths? [y/N] ", op.Title(), len(paths))) {
			return ErrAborted
		}
	}

	if err := driver.Start(op, paths); err != nil {
		return err
	}

	stop := a.cancelOnInterrupt(driver)
	summary := driver.RunToCompletion(ctx)
	stop()

	fmt.Fprint(a.stdout, results.Render())

	if summary.Cancelled {
		return fmt.Errorf("%s cancelled after %d of %d paths", op, summary.Processed, summary.Total)
	}
	if opts.strict && summary.Failed > 0 {
		return fmt.Errorf("%d of %d paths failed", summary.Failed, summary.Total)
	}
	return nil
}

// targetPaths resolves --path and --index, falling back to the selected entries
func (a *App) targetPaths(reg *registry.Registry, opts batchOptions) ([]string, error) {
	if len(opts.paths) == 0 && len(opts.indexes) == 0 {
		return reg.Selected(), nil
	}

	var paths []string
	for _, n := range opts.indexes {
		e, err := reg.Entry(n - 1)
		if err != nil {
			return nil, fmt.Errorf("no Path %d (%d registered): %w", n, reg.Len(), err)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("no folder set for Path %d", n)
		}
		paths = append(paths, e.Path)
	}
	for _, p := range opts.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

// confirm asks a yes/no question on stderr and reads the answer from stdin
func (a *App) confirm(prompt string) bool {
	a.errorf("%s", prompt)
	answer, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && answer == "" {
		a.errorf("\n")
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// cancelOnInterrupt cancels the batch on the first interrupt. Later
// interrupts get the default behaviour and terminate the process.
func (a *App) cancelOnInterrupt(driver *batch.Driver) (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigs:
			signal.Stop(sigs)
			a.errorf("cancelling after the current path, interrupt again to abort\n")
			driver.Cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
