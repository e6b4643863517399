package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/accel"
	"github.com/abdul-hamid-achik/volt/packages/core/config"
	"github.com/abdul-hamid-achik/volt/packages/core/runner"
	"github.com/abdul-hamid-achik/volt/packages/history"
	"github.com/abdul-hamid-achik/volt/packages/output"
	"github.com/abdul-hamid-achik/volt/packages/suite"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run request suites",
	Long: `Run the requests of one or more suite files, evaluate their assertions
and chain extracted values into later requests.

Directories are searched recursively for .yaml and .yml suites.

Examples:
  volt run api.yaml
  volt run ./suites/ --env-file .env.staging
  volt run api.yaml --tags smoke --bail
  volt run api.yaml --tier accelerated --output junit --output-file report.xml
  volt run ./suites/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
	// WatchMinInterval is the minimum time between two watch re-runs
	WatchMinInterval = time.Second
)

var (
	envFileFlag     string
	configFlag      string
	nameFlag        string
	tagsFlag        string
	verboseFlag     bool
	bailFlag        bool
	timeoutFlag     string
	noColorFlag     bool
	outputFlag      string
	outputFileFlag  string
	tierFlag        string
	historyFlag     bool
	historyPathFlag string
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
	waitForFlag     string
	waitTimeoutFlag string
)

func init() {
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("VOLT_ENV_FILE", ""), "Path to .env file for variable substitution (env: VOLT_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("VOLT_CONFIG", ""), "Path to config file (env: VOLT_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", getEnvString("VOLT_NAME", ""), "Run only requests matching name pattern (env: VOLT_NAME)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("VOLT_TAGS", ""), "Run only requests with specified tags (comma-separated) (env: VOLT_TAGS)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("VOLT_VERBOSE", false), "Show passing assertions, captures and engine logs (env: VOLT_VERBOSE)")
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("VOLT_BAIL", false), "Stop on first failure (env: VOLT_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("VOLT_TIMEOUT", "30s"), "Request timeout (e.g., 30s, 1m) (env: VOLT_TIMEOUT)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("VOLT_NO_COLOR", false), "Disable colored output (env: VOLT_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("VOLT_OUTPUT", "console"), "Output format: console, json, junit, tap (env: VOLT_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("VOLT_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: VOLT_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&tierFlag, "tier", getEnvString("VOLT_TIER", string(accel.TierAuto)), "Engine tier: auto, reference, accelerated (env: VOLT_TIER)")
	runCmd.Flags().BoolVar(&historyFlag, "history", getEnvBool("VOLT_HISTORY", false), "Record runs in the history database (env: VOLT_HISTORY)")
	runCmd.Flags().StringVar(&historyPathFlag, "history-path", getEnvString("VOLT_HISTORY_PATH", ""), "History database path (env: VOLT_HISTORY_PATH)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run suites when they change")
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("VOLT_PROXY", ""), "Proxy URL for HTTP requests (env: VOLT_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("VOLT_INSECURE", false), "Disable SSL certificate validation (env: VOLT_INSECURE)")
	runCmd.Flags().StringVar(&waitForFlag, "wait-for", getEnvString("VOLT_WAIT_FOR", ""), "Wait until URL returns 200 before running (env: VOLT_WAIT_FOR)")
	runCmd.Flags().StringVar(&waitTimeoutFlag, "wait-timeout", getEnvString("VOLT_WAIT_TIMEOUT", "30s"), "Maximum time to wait for --wait-for (env: VOLT_WAIT_TIMEOUT)")
}

// runSettings is the effective configuration of a run after flags, VOLT_*
// environment variables and the config file are combined.
type runSettings struct {
	output      string
	outputFile  string
	tier        string
	verbose     bool
	noColor     bool
	history     bool
	historyPath string
	runner      runner.Config
}

// flagSet reports whether a flag was given on the command line or through
// its VOLT_* environment variable.
func flagSet(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	_, ok := os.LookupEnv(envName(name))
	return ok
}

// envName maps a flag name to its environment variable, e.g. env-file to
// VOLT_ENV_FILE.
func envName(flag string) string {
	return "VOLT_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// stringSetting returns the flag value when the flag was set, otherwise the
// config value when non-empty, otherwise the flag default.
func stringSetting(cmd *cobra.Command, name, flagVal, cfgVal string) string {
	if flagSet(cmd, name) || cfgVal == "" {
		return flagVal
	}
	return cfgVal
}

func boolSetting(cmd *cobra.Command, name string, flagVal, cfgVal bool) bool {
	if flagSet(cmd, name) {
		return flagVal
	}
	return cfgVal
}

func loadRunSettings(cmd *cobra.Command) (*runSettings, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	timeout, err := time.ParseDuration(timeoutFlag)
	if err != nil {
		return nil, withExitCode(ExitUsageError,
			fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err))
	}
	if !flagSet(cmd, "timeout") && fileConfig.Timeout > 0 {
		timeout = fileConfig.TimeoutDuration()
	}

	vars, err := loadVariables(stringSetting(cmd, "env-file", envFileFlag, fileConfig.EnvFile))
	if err != nil {
		return nil, err
	}

	s := &runSettings{
		output:      stringSetting(cmd, "output", outputFlag, fileConfig.Output),
		outputFile:  stringSetting(cmd, "output-file", outputFileFlag, fileConfig.OutputFile),
		tier:        stringSetting(cmd, "tier", tierFlag, fileConfig.Tier),
		verbose:     boolSetting(cmd, "verbose", verboseFlag, fileConfig.GetVerbose()),
		noColor:     boolSetting(cmd, "no-color", noColorFlag, fileConfig.GetNoColor()),
		history:     boolSetting(cmd, "history", historyFlag, fileConfig.GetHistory()),
		historyPath: stringSetting(cmd, "history-path", historyPathFlag, fileConfig.HistoryPath),
		runner: runner.Config{
			Variables:      vars,
			Timeout:        timeout,
			FollowRedirect: fileConfig.GetFollowRedirects(),
			ValidateSSL:    fileConfig.GetValidateSSL() && !insecureFlag,
			Proxy:          stringSetting(cmd, "proxy", proxyFlag, fileConfig.Proxy),
			MaxRedirects:   fileConfig.MaxRedirects,
			DefaultHeaders: fileConfig.Headers,
			Bail:           boolSetting(cmd, "bail", bailFlag, fileConfig.GetBail()),
			NameFilter:     nameFlag,
			TagsFilter:     splitList(tagsFlag),
		},
	}
	s.runner.Verbose = s.verbose
	if s.historyPath == "" {
		s.historyPath = config.DefaultHistoryPath()
	}
	return s, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := loadRunSettings(cmd)
	if err != nil {
		return err
	}
	if settings.noColor {
		color.NoColor = true
	}

	var outWriter io.Writer = cmd.OutOrStdout()
	if settings.outputFile != "" {
		f, err := os.Create(settings.outputFile)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		outWriter = f
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .yaml, .yml or .json suite files found"))
	}

	logger := newLogger(cmd.ErrOrStderr(), settings.verbose)
	engine, err := selectEngine(ctx, settings.tier, logger)
	if err != nil {
		return err
	}
	settings.runner.Engine = engine
	settings.runner.Warn = func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	}

	var store *history.Store
	if settings.history {
		store, err = history.Open(settings.historyPath)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		defer store.Close()
	}

	if waitForFlag != "" {
		waitTimeout, err := time.ParseDuration(waitTimeoutFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid wait timeout %q: %w", waitTimeoutFlag, err))
		}
		wait := runner.WaitConfig{URL: waitForFlag, Timeout: waitTimeout}
		if err := runner.NewRunner(&settings.runner).WaitFor(ctx, wait); err != nil {
			return withExitCode(ExitNetworkError, err)
		}
	}

	p := &suitePass{
		files:    files,
		settings: settings,
		store:    store,
		logger:   logger,
	}

	runErr := p.run(ctx, outWriter)
	if !watchFlag {
		return runErr
	}
	return watch(ctx, cmd, args, p, outWriter)
}

// suitePass runs every collected file once with a fresh runner, so chain
// variables never leak from one watch iteration into the next.
type suitePass struct {
	files    []string
	settings *runSettings
	store    *history.Store
	logger   *slog.Logger
}

func (p *suitePass) run(ctx context.Context, w io.Writer) error {
	formatter, err := output.New(p.settings.output, w, p.settings.verbose, p.settings.noColor)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	formatter.FormatHeader(version)

	r := runner.NewRunner(&p.settings.runner)
	start := time.Now()
	failed := 0
	var loadErr error

	for _, file := range p.files {
		result, err := r.RunFile(ctx, file)
		if result != nil {
			formatter.FormatResult(result)
			failed += result.Failed
			p.record(ctx, result)
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			formatter.FormatError(err)
			if loadErr == nil {
				loadErr = err
			}
			if p.settings.runner.Bail {
				break
			}
			continue
		}
		if p.settings.runner.Bail && result.Failed > 0 {
			break
		}
	}

	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(time.Since(start)); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	switch {
	case failed > 0:
		return errTestsFailed
	case errors.Is(loadErr, suite.ErrInvalidSuite):
		return withExitCode(ExitParseError, nil)
	case loadErr != nil:
		return withExitCode(ExitUsageError, nil)
	case ctx.Err() != nil:
		return withExitCode(ExitTestFailure, ctx.Err())
	}
	return nil
}

func (p *suitePass) record(ctx context.Context, result *runner.RunResult) {
	if p.store == nil {
		return
	}
	id, err := p.store.SaveRun(context.WithoutCancel(ctx), history.FromResult(result))
	if err != nil {
		p.logger.Warn("recording run failed", "file", result.File, "error", err)
		return
	}
	p.logger.Debug("run recorded", "id", id, "file", result.File)
}

func watch(ctx context.Context, cmd *cobra.Command, args []string, p *suitePass, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range p.files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				p.logger.Warn("cannot watch directory", "dir", dir, "error", err)
			}
			watchedDirs[dir] = true
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			continue
		}
		_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !watchedDirs[path] {
				_ = watcher.Add(path)
				watchedDirs[path] = true
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	limiter := rate.NewLimiter(rate.Every(WatchMinInterval), 1)
	rerun := make(chan string, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isSuiteFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\n\nFile changed: %s\nRe-running suites...\n\n", name)
			if files, err := collectFiles(args); err == nil && len(files) > 0 {
				p.files = files
			}
			if err := p.run(ctx, w); err != nil {
				printError(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watcher error", "error", err)
		}
	}
}
