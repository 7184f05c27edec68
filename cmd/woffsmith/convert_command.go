package main

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

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"woffsmith/internal/config"
	"woffsmith/internal/container"
	"woffsmith/internal/fileutil"
	"woffsmith/internal/logging"
	"woffsmith/internal/preflight"
	"woffsmith/internal/queue"
	"woffsmith/internal/textutil"
	"woffsmith/internal/workflow"
)

// zipFromConfig is the value of a bare --zip. It cannot be a real archive
// name because archive names must end in .zip.
const zipFromConfig = "auto"

type convertOptions struct {
	format      string
	overrides   []string
	outDir      string
	zipName     string
	concurrency int
	noProgress  bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <font>...",
		Short: "Convert .ttf and .otf files into WOFF or WOFF2 containers",
		Example: `  woffsmith convert Inter.ttf Inter-Bold.otf --format woff
  woffsmith convert fonts/*.ttf --set Display.ttf=woff --zip
  woffsmith convert fonts/*.otf --zip=web-fonts.zip --out dist`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			zipRequested := cmd.Flags().Changed("zip")
			local, err := opts.apply(*cfg, zipRequested)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), &local, logger, args, opts, zipRequested)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "", "Target format for every file: woff or woff2 (default from convert.default_format)")
	flags.StringArrayVar(&opts.overrides, "set", nil, "Per-file format override as name=format (repeatable)")
	flags.StringVarP(&opts.outDir, "out", "o", "", "Output directory (default from convert.output_dir)")
	flags.StringVar(&opts.zipName, "zip", "", "Deliver one zip archive instead of individual files; a bare --zip uses convert.archive_name")
	flags.Lookup("zip").NoOptDefVal = zipFromConfig
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 0, "Fonts converted in parallel (default from workflow.concurrency)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// apply folds command flags into a copy of the loaded configuration.
func (o *convertOptions) apply(cfg config.Config, zipRequested bool) (config.Config, error) {
	if value := strings.TrimSpace(o.format); value != "" {
		format, err := container.ParseFormat(value)
		if err != nil {
			return cfg, fmt.Errorf("--format: %w", err)
		}
		cfg.Convert.DefaultFormat = format.String()
	}
	if value := strings.TrimSpace(o.outDir); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return cfg, fmt.Errorf("--out: %w", err)
		}
		cfg.Convert.OutputDir = expanded
	}
	if o.concurrency != 0 {
		cfg.Workflow.Concurrency = o.concurrency
	}
	if zipRequested {
		if name := strings.TrimSpace(o.zipName); name != zipFromConfig {
			cfg.Convert.ArchiveName = name
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runConvert(ctx context.Context, out, errOut io.Writer, cfg *config.Config, logger *slog.Logger, paths []string, opts convertOptions, zipRequested bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	colorize := shouldColorize(out)

	if failures := preflight.Failures(preflight.RunAll(cfg)); len(failures) > 0 {
		for _, line := range renderSectionHeader("Preflight", colorize) {
			fmt.Fprintln(errOut, line)
		}
		for _, result := range failures {
			fmt.Fprintln(errOut, renderStatusLine(result.Name, statusError, result.Detail, colorize))
		}
		return fmt.Errorf("preflight failed: %d check(s) did not pass", len(failures))
	}

	files, err := readSources(paths)
	if err != nil {
		return err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job registry: %w", err)
	}
	defer store.Close()

	accepted, err := store.CreateJobs(ctx, files)
	if err != nil {
		return fmt.Errorf("register fonts: %w", err)
	}
	if accepted == 0 {
		return fmt.Errorf("none of the %d input file(s) is a .ttf or .otf font", len(files))
	}
	if skipped := len(files) - accepted; skipped > 0 {
		fmt.Fprintln(errOut, renderStatusLine("Inputs", statusWarn, fmt.Sprintf("ignored %d file(s) without a .ttf or .otf extension", skipped), shouldColorize(errOut)))
	}

	if err := applyOverrides(ctx, store, opts.overrides); err != nil {
		return err
	}

	manager := workflow.NewManager(cfg, store, logger)
	defer manager.Close()

	events, unsubscribe := manager.Events().Subscribe(256)
	progress := startBatchProgress(errOut, accepted, events, !opts.noProgress && shouldColorize(errOut))

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	summary, runErr := manager.RunAll(runCtx)
	stop()
	unsubscribe()
	progress.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("convert: %w", runErr)
	}

	jobs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	fmt.Fprintln(out, renderResults(jobs, colorize))
	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("job stats: %w", err)
	}
	fmt.Fprintln(out, renderStatusCounts(stats, colorize))
	if unfinished := countUnfinished(jobs); unfinished > 0 {
		fmt.Fprintln(errOut, renderStatusLine("Unfinished", statusWarn, fmt.Sprintf("%d font(s) left pending; run convert again to finish them", unfinished), shouldColorize(errOut)))
	}

	delivered, err := deliver(ctx, manager, store, cfg, zipRequested)
	if err != nil {
		return err
	}
	for _, path := range delivered {
		fmt.Fprintln(out, renderStatusLine("Wrote", statusOK, path, colorize))
	}

	logger.Info("convert finished",
		logging.String(logging.FieldEventType, "convert_complete"),
		logging.Int("converted", summary.Converted),
		logging.Int("failed", summary.Failed),
		logging.Int("delivered", len(delivered)),
		logging.Duration("duration", summary.Duration),
	)

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d font(s) failed to convert", summary.Failed, summary.Total)
	}
	return nil
}

func readSources(paths []string) ([]queue.SourceFile, error) {
	files := make([]queue.SourceFile, 0, len(paths))
	for _, path := range paths {
		if result := preflight.CheckReadableFile(path, path); !result.Passed {
			return nil, fmt.Errorf("input %s", result.Detail)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, queue.SourceFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

// applyOverrides resolves name=format pairs against registered jobs by file
// name and changes their target format.
func applyOverrides(ctx context.Context, store *queue.Store, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	jobs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	byName := make(map[string][]string, len(jobs))
	for _, job := range jobs {
		key := textutil.NormalizeName(job.Name)
		byName[key] = append(byName[key], job.ID)
	}

	for _, raw := range overrides {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("--set %q: expected name=format", raw)
		}
		format, err := container.ParseFormat(value)
		if err != nil {
			return fmt.Errorf("--set %q: %w", raw, err)
		}
		ids, found := byName[textutil.NormalizeName(filepath.Base(name))]
		if !found {
			return fmt.Errorf("--set %q: no registered font named %s", raw, filepath.Base(name))
		}
		for _, id := range ids {
			if err := store.SetFormat(ctx, id, format); err != nil {
				return fmt.Errorf("--set %q: %w", raw, err)
			}
		}
	}
	return nil
}

func renderResults(jobs []*queue.Job, colorize bool) string {
	rows := make([][]string, 0, len(jobs))
	var inputTotal, outputTotal int64
	for _, job := range jobs {
		output := ""
		if bytes := job.OutputBytes(); bytes > 0 {
			output = humanBytes(bytes)
			outputTotal += bytes
		}
		inputTotal += job.Size
		rows = append(rows, []string{
			job.Name,
			job.Format.String(),
			renderJobStatus(job.Status, colorize),
			humanBytes(job.Size),
			output,
			job.ErrorMessage,
		})
	}
	footer := []string{fmt.Sprintf("%d font(s)", len(jobs)), "", "", humanBytes(inputTotal), humanBytes(outputTotal), ""}
	return renderTableWithFooter(
		[]string{"File", "Format", "Status", "Input", "Output", "Message"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

// renderStatusCounts summarizes the registry in lifecycle order, skipping
// statuses with no jobs.
func renderStatusCounts(stats map[queue.Status]int, colorize bool) string {
	parts := make([]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		if n := stats[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", renderJobStatus(status, colorize), n))
		}
	}
	return strings.Join(parts, ", ")
}

func countUnfinished(jobs []*queue.Job) int {
	n := 0
	for _, job := range jobs {
		if !job.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// deliver writes converted output into the output directory while holding the
// directory lock. It returns the written paths.
func deliver(ctx context.Context, manager *workflow.Manager, store *queue.Store, cfg *config.Config, zipRequested bool) ([]string, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("output directory %s is in use by another woffsmith process", cfg.Convert.OutputDir)
	}
	defer func() { _ = lock.Unlock() }()

	if zipRequested {
		data, err := manager.BuildArchive(ctx)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, nil
		}
		target := filepath.Join(cfg.Convert.OutputDir, cfg.Convert.ArchiveName)
		if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
		return []string{target}, nil
	}

	jobs, err := store.Converted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list converted jobs: %w", err)
	}
	var written []string
	seen := make(map[string]bool)
	for _, job := range jobs {
		for _, artifact := range job.Artifacts {
			name := textutil.FlatName(artifact.Name, "font"+artifact.Format.Extension())
			target := filepath.Join(cfg.Convert.OutputDir, name)
			if err := fileutil.WriteFileAtomic(target, artifact.Data, 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", name, err)
			}
			if !seen[target] {
				seen[target] = true
				written = append(written, target)
			}
		}
	}
	return written, nil
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(v)/float64(div), "KMGTPEZY"[exp])
}
