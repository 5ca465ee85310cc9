package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"gridsmith/internal/config"
	"gridsmith/internal/gamedb"
	"gridsmith/internal/ledger"
	"gridsmith/internal/logging"
	"gridsmith/internal/providers"
	"gridsmith/internal/scheduler"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		platformFlag    string
		inputFlag       string
		romsFlag        string
		interactiveFlag bool
		modeFlag        string
		workersFlag     int
	)

	cmd := &cobra.Command{
		Use:   "run [names...]",
		Short: "Resolve artwork and compose icons for a platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if modeFlag != "" {
				cfg.Run.Mode = modeFlag
			}
			if workersFlag > 0 {
				cfg.Run.Workers = workersFlag
			}
			if interactiveFlag {
				// Prompting only makes sense one title at a time.
				cfg.Run.Mode = "sequential"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			platform, ok := cfg.PlatformByKey(platformFlag)
			if !ok {
				return fmt.Errorf("unknown platform %q (known: %s)", platformFlag, strings.Join(platformKeys(cfg), ", "))
			}

			names, err := collectNames(args, inputFlag, romsFlag)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no titles to process: pass names as arguments, --input, or --roms")
			}

			logger, err := cmdCtx.newLogger(cfg)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, ".gridsmith.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another gridsmith run is already writing to %s", cfg.Paths.OutputDir)
			}
			defer func() {
				_ = lock.Unlock()
			}()

			if cfg.Paths.DatasetDir != "" {
				dataset, err := gamedb.Load(cfg.Paths.DatasetDir, logger)
				if err != nil {
					logger.Warn("dataset unavailable, using raw names", logging.Error(err))
				} else {
					names = canonicalNames(dataset, platform, names)
				}
			}

			store, err := ledger.Open(cfg.Paths.LedgerDir)
			if err != nil {
				return err
			}
			defer store.Close()

			orchestrator, _, err := buildProviders(cfg, logger)
			if err != nil {
				return err
			}

			events := &consoleEvents{out: cmd.OutOrStdout()}
			opts := []scheduler.Option{scheduler.WithEvents(events)}

			var bridge *scheduler.Bridge
			if interactiveFlag {
				bridge = scheduler.NewBridge()
				opts = append(opts, scheduler.WithBridge(bridge))
			}

			borders := scheduler.NewDirBorders(cfg.Paths.BordersDir)
			sched, err := scheduler.New(cfg, orchestrator, borders, store, logger, opts...)
			if err != nil {
				return err
			}

			tasks := make([]*scheduler.Task, 0, len(names))
			for _, name := range names {
				tasks = append(tasks, scheduler.NewTask(name, platform))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if bridge != nil {
				go answerSelections(bridge, cmd.OutOrStdout())
			}

			result := sched.Run(ctx, tasks)

			summaries, err := store.Summaries(cmd.Context())
			if err == nil && len(summaries) > 0 {
				printSummaryTable(cmd.OutOrStdout(), summaries)
			}
			if result.Errors > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Review sidecars written to %s\n", cfg.Paths.ReviewDir)
			}
			if result.Cancelled {
				fmt.Fprintln(cmd.OutOrStdout(), "Run cancelled; remaining titles skipped.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "platform key from the config (required)")
	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "file with one title per line")
	cmd.Flags().StringVarP(&romsFlag, "roms", "r", "", "directory whose file names become titles")
	cmd.Flags().BoolVar(&interactiveFlag, "interactive", false, "prompt to choose between candidate artworks")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "override run mode (parallel or sequential)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "override parallel worker count")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}

func platformKeys(cfg *config.Config) []string {
	keys := make([]string, 0, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return keys
}

// collectNames merges positional arguments with --input and --roms sources,
// preserving first-seen order and dropping duplicates.
func collectNames(args []string, inputPath, romsDir string) ([]string, error) {
	var names []string
	names = append(names, args...)

	if inputPath != "" {
		file, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("read input list: %w", err)
		}
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			names = append(names, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read input list: %w", err)
		}
	}

	if romsDir != "" {
		entries, err := os.ReadDir(romsDir)
		if err != nil {
			return nil, fmt.Errorf("scan roms directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if stem != "" {
				names = append(names, stem)
			}
		}
	}

	seen := make(map[string]struct{}, len(names))
	unique := names[:0]
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, name)
	}
	return unique, nil
}

func canonicalNames(dataset *gamedb.Dataset, platform config.Platform, names []string) []string {
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		candidates := dataset.Lookup(platform.Key, platform.Aliases, name, 1)
		if len(candidates) > 0 {
			resolved = append(resolved, candidates[0])
			continue
		}
		resolved = append(resolved, name)
	}
	return resolved
}

// answerSelections drives the interactive picker from stdin.
func answerSelections(bridge *scheduler.Bridge, out io.Writer) {
	stdin := bufio.NewScanner(os.Stdin)
	for sel := range bridge.Requests() {
		fmt.Fprintf(out, "\n%s [%s]: %d candidate(s)\n", sel.Title, sel.Platform, len(sel.Options))
		printOptionsTable(out, sel.Options)
		decision := readDecision(stdin, out, len(sel.Options))
		sel.Answer(decision)
		if decision.Action == scheduler.ActionCancelAll {
			return
		}
	}
}

func readDecision(stdin *bufio.Scanner, out io.Writer, count int) scheduler.Decision {
	for {
		fmt.Fprintf(out, "Choose [0-%d], s to skip, q to cancel: ", count-1)
		if !stdin.Scan() {
			return scheduler.Decision{Action: scheduler.ActionCancelAll}
		}
		answer := strings.TrimSpace(strings.ToLower(stdin.Text()))
		switch answer {
		case "s":
			return scheduler.Decision{Action: scheduler.ActionSkip}
		case "q":
			return scheduler.Decision{Action: scheduler.ActionCancelAll}
		case "":
			return scheduler.Decision{Action: scheduler.ActionSelect, Index: 0}
		default:
			index, err := strconv.Atoi(answer)
			if err == nil && index >= 0 && index < count {
				return scheduler.Decision{Action: scheduler.ActionSelect, Index: index}
			}
			fmt.Fprintln(out, "Not a valid choice.")
		}
	}
}

func printOptionsTable(out io.Writer, options []providers.Option) {
	rows := make([][]string, 0, len(options))
	for i, opt := range options {
		rows = append(rows, []string{
			strconv.Itoa(i),
			opt.ProviderID,
			opt.SourceTag,
			fmt.Sprintf("%d KiB", len(opt.Bytes)/1024),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Provider", "Source", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
}

func printSummaryTable(out io.Writer, summaries []ledger.Summary) {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Platform,
			strconv.Itoa(s.Done),
			strconv.Itoa(s.Failed),
			strconv.Itoa(s.Skipped),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Platform", "Done", "Failed", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
}
