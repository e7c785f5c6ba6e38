package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"svnbatch/internal/batch"
	"svnbatch/internal/discovery"
	"svnbatch/internal/domain"
	"svnbatch/internal/registry"
	"svnbatch/internal/resultlog"
	"svnbatch/internal/svn"
	"svnbatch/internal/ui"
)

func init() {
	register(
		&command{name: "tui", usage: "tui", brief: "start the interactive UI (default)", run: runTUI},
		&command{name: "list", usage: "list", brief: "show registered paths", run: runList},
		&command{name: "add", usage: "add [PATH...]", brief: "register paths (an empty entry when none given)", run: runAdd},
		&command{name: "remove", usage: "remove N", brief: "delete Path N", run: runRemove},
		&command{name: "set", usage: "set N PATH", brief: "change the folder of Path N", run: runSet},
		&command{name: "include", usage: "include N", brief: "include Path N in batch operations", run: runInclude},
		&command{name: "exclude", usage: "exclude N", brief: "exclude Path N from batch operations", run: runExclude},
		&command{name: "save", usage: "save", brief: "write the path list file", run: runSave},
		&command{name: "scan", usage: "scan [--depth N] [--dry-run] DIR...", brief: "find working copies and register them", run: runScan},
		&command{name: "config", usage: "config [--init [--force]]", brief: "print or write the effective configuration", run: runConfig},
		&command{name: "version", usage: "version", brief: "print version information", run: runVersion},
		&command{name: "cleanup", usage: "cleanup [--all | --path P | --index N] [--yes] [--strict]", brief: "run svn cleanup", run: batchRunner(domain.OpCleanup)},
		&command{name: "update", usage: "update [--all | --path P | --index N] [--yes] [--strict]", brief: "run svn update", run: batchRunner(domain.OpUpdate)},
	)
}

// newRunner builds the svn runner from the configuration
func (a *App) newRunner() (svn.Runner, error) {
	timeout, err := a.cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return svn.NewCommandRunner(a.cfg.SVNBinary, timeout), nil
}

func runTUI(a *App, args []string) error {
	if len(args) > 0 {
		return usagef("tui takes no arguments")
	}
	reg, err := registry.Open(a.store)
	if err != nil {
		return err
	}
	runner, err := a.newRunner()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := resultlog.New()
	driver := batch.New(runner, results)
	model := ui.NewModel(ctx, a.cfg, a.store, reg, driver, results)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func runList(a *App, args []string) error {
	if len(args) > 0 {
		return usagef("list takes no arguments")
	}
	reg, err := registry.Open(a.store)
	if err != nil {
		return err
	}
	for i, e := range reg.Entries() {
		check := "[ ]"
		if e.IncludeInOperations {
			check = "[x]"
		}
		path := e.Path
		if path == "" {
			path = "(empty)"
		}
		a.printf("%2d  %s %s\n", i+1, check, path)
	}
	return nil
}

func runAdd(a *App, args []string) error {
	reg, err := a.store.Load()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		i := reg.Add()
		a.printf("added Path %d\n", i+1)
	}
	for _, p := range args {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		i, err := reg.AddPath(abs)
		if err != nil {
			return err
		}
		a.printf("added Path %d: %s\n", i+1, abs)
	}
	return a.store.Save(reg)
}

func runRemove(a *App, args []string) error {
	if len(args) != 1 {
		return usagef("remove needs exactly one path number")
	}
	return a.editEntry(args[0], func(reg *registry.Registry, i int) error {
		e, err := reg.Entry(i)
		if err != nil {
			return err
		}
		if err := reg.Remove(i); err != nil {
			return err
		}
		a.printf("removed Path %d: %s\n", i+1, e.Path)
		return nil
	})
}

func runSet(a *App, args []string) error {
	if len(args) != 2 {
		return usagef("set needs a path number and a folder")
	}
	abs, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[1], err)
	}
	return a.editEntry(args[0], func(reg *registry.Registry, i int) error {
		if err := reg.SetPath(i, abs); err != nil {
			return err
		}
		a.printf("Path %d: %s\n", i+1, abs)
		return nil
	})
}

func runInclude(a *App, args []string) error { return a.setIncluded(args, true) }

func runExclude(a *App, args []string) error { return a.setIncluded(args, false) }

func (a *App) setIncluded(args []string, included bool) error {
	if len(args) != 1 {
		return usagef("expected exactly one path number")
	}
	return a.editEntry(args[0], func(reg *registry.Registry, i int) error {
		if err := reg.SetIncluded(i, included); err != nil {
			return err
		}
		state := "excluded from"
		if included {
			state = "included in"
		}
		a.printf("Path %d %s batch operations\n", i+1, state)
		return nil
	})
}

// editEntry loads the registry, applies fn to the 0-based index named by
// the 1-based arg and saves the result
func (a *App) editEntry(arg string, fn func(reg *registry.Registry, index int) error) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return usagef("invalid path number %q", arg)
	}
	reg, err := a.store.Load()
	if err != nil {
		return err
	}
	if err := fn(reg, n-1); err != nil {
		if errors.Is(err, registry.ErrIndexOutOfRange) {
			return fmt.Errorf("no Path %d (%d registered): %w", n, reg.Len(), err)
		}
		return err
	}
	return a.store.Save(reg)
}

func runSave(a *App, args []string) error {
	if len(args) > 0 {
		return usagef("save takes no arguments")
	}
	reg, err := registry.Open(a.store)
	if err != nil {
		return err
	}
	if err := a.store.Save(reg); err != nil {
		return err
	}
	a.printf("saved %d paths to %s\n", reg.Len(), a.store.Path())
	return nil
}

func runScan(a *App, args []string) error {
	fs := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	depth := fs.Int("depth", discovery.DefaultMaxDepth, "maximum directory depth below each root")
	dryRun := fs.Bool("dry-run", false, "only print what would be added")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() == 0 {
		return usagef("scan needs at least one directory")
	}

	found, err := discovery.Scan(context.Background(), fs.Args(), *depth)
	if err != nil {
		return err
	}

	reg, err := a.store.Load()
	if err != nil {
		return err
	}
	added := 0
	for _, p := range found {
		if reg.Contains(p) {
			a.printf("known     %s\n", p)
			continue
		}
		if !*dryRun {
			if _, err := reg.AddPath(p); err != nil {
				a.errorf("skipped   %s: %v\n", p, err)
				continue
			}
		}
		added++
		a.printf("added     %s\n", p)
	}
	a.printf("%d working copies found, %d new\n", len(found), added)

	if *dryRun || added == 0 {
		return nil
	}
	return a.store.Save(reg)
}

func runConfig(a *App, args []string) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	initFile := fs.Bool("init", false, "write the effective configuration to the config file")
	force := fs.Bool("force", false, "overwrite an existing config file with --init")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("config takes no arguments")
	}
	if *force && !*initFile {
		return usagef("--force only applies to --init")
	}

	if !*initFile {
		data, err := a.cfg.Encode()
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(data)
		return err
	}

	path := a.configSvc.Path()
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", path)
	}
	if err := a.configSvc.Save(a.cfg); err != nil {
		return err
	}
	log.Printf("Wrote config to %s", path)
	a.printf("wrote %s\n", path)
	return nil
}

func runVersion(a *App, args []string) error {
	a.printf("svnbatch version %s\n", Version)
	return nil
}
