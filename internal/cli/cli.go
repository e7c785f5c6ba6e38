// Package cli implements the svnbatch command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"svnbatch/internal/config"
	"svnbatch/internal/registry"
)

// Version is set at build time with -ldflags "-X svnbatch/internal/cli.Version=..."
var Version = "dev"

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by bad command line input
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// command is one svnbatch sub-command
type command struct {
	name  string
	usage string
	brief string
	run   func(a *App, args []string) error
}

// App carries what every sub-command needs
type App struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	configSvc config.ConfigService
	store     *registry.FileStore
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func (a *App) errorf(format string, args ...any) {
	fmt.Fprintf(a.stderr, format, args...)
}

var commands = map[string]*command{}

func register(cmds ...*command) {
	for _, c := range cmds {
		commands[c.name] = c
	}
}

// globalFlags are accepted before the sub-command name
type globalFlags struct {
	configFile string
	pathsFile  string
	svnBinary  string
	timeout    string
	logFile    string
	help       bool
	version    bool
}

// Run executes svnbatch with args (without the program name) and returns the exit code
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var g globalFlags
	fs := pflag.NewFlagSet("svnbatch", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVarP(&g.configFile, "config", "c", "", "configuration file (TOML)")
	fs.StringVar(&g.pathsFile, "paths", "", "path list file (JSON), overrides paths_file")
	fs.StringVar(&g.svnBinary, "svn", "", "svn executable, overrides svn_binary")
	fs.StringVar(&g.timeout, "timeout", "", "per-command timeout such as 10m, overrides command_timeout")
	fs.StringVar(&g.logFile, "log", "", "log file, overrides log_file")
	fs.BoolVarP(&g.help, "help", "h", false, "show this help message")
	fs.BoolVarP(&g.version, "version", "V", false, "print version information")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if g.help {
		printUsage(stdout, fs)
		return ExitOK
	}
	if g.version {
		fmt.Fprintf(stdout, "svnbatch version %s\n", Version)
		return ExitOK
	}

	rest := fs.Args()
	name := "tui"
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	if name == "help" {
		printUsage(stdout, fs)
		return ExitOK
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "svnbatch: unknown command %q\n", name)
		printUsage(stderr, fs)
		return ExitUsage
	}

	cfg, svc, err := loadConfig(g)
	if err != nil {
		fmt.Fprintf(stderr, "svnbatch: %v\n", err)
		return ExitError
	}

	closeLog := setupLogging(cfg.LogFile)
	defer closeLog()
	log.Printf("svnbatch %s: %s %s", Version, name, strings.Join(rest, " "))

	app := &App{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		cfg:       cfg,
		configSvc: svc,
		store:     registry.NewFileStore(cfg.PathsFile),
	}

	if err := cmd.run(app, rest); err != nil {
		log.Printf("%s failed: %v", name, err)
		fmt.Fprintf(stderr, "svnbatch %s: %v\n", name, err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "usage: svnbatch %s\n", cmd.usage)
			return ExitUsage
		}
		return ExitError
	}
	return ExitOK
}

// loadConfig reads the TOML settings and applies command line overrides
func loadConfig(g globalFlags) (*config.Config, config.ConfigService, error) {
	var (
		svc config.ConfigService
		cfg *config.Config
		err error
	)
	if g.configFile != "" {
		svc = config.NewConfigServiceAt(g.configFile)
		cfg, err = svc.LoadFromPath(g.configFile)
	} else {
		svc = config.NewConfigService()
		cfg, err = svc.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	if g.pathsFile != "" {
		cfg.PathsFile = g.pathsFile
	}
	if g.svnBinary != "" {
		cfg.SVNBinary = g.svnBinary
	}
	if g.timeout != "" {
		cfg.CommandTimeout = g.timeout
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}
	if _, err := cfg.Timeout(); err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// setupLogging sends the standard logger to the log file.
// When the file cannot be opened logging is discarded so terminal output stays clean.
func setupLogging(path string) func() {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(logFile)
	return func() {
		log.SetOutput(io.Discard)
		logFile.Close()
	}
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: svnbatch [options] [command] [args]\n\n")
	fmt.Fprintf(w, "svnbatch keeps a list of Subversion working copies and runs\n")
	fmt.Fprintf(w, "svn cleanup / svn update on them one at a time.\n\n")
	fmt.Fprintf(w, "Commands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].brief)
	}

	fmt.Fprintf(w, "\nOptions:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  svnbatch                      # start the interactive UI\n")
	fmt.Fprintf(w, "  svnbatch add ~/work/project   # register a working copy\n")
	fmt.Fprintf(w, "  svnbatch update --yes         # update every checked path\n")
	fmt.Fprintf(w, "  svnbatch cleanup --index 2    # cleanup Path 2 only\n")
}
