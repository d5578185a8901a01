// Package main provides the CLI entrypoint for facedrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/config"
	"github.com/mkondo/facedrill/internal/faceapi"
	"github.com/mkondo/facedrill/internal/facecache"
	"github.com/mkondo/facedrill/internal/imageopt"
	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/session"
	"github.com/mkondo/facedrill/internal/stats"
	"github.com/mkondo/facedrill/internal/storage"
	"github.com/mkondo/facedrill/internal/trainer"
	"github.com/mkondo/facedrill/internal/tui"
)

const defaultRegion = model.RegionJapan

var (
	practiceRegion     string
	practiceDifficulty string
	practiceOffline    bool
	practiceEndpoint   string
	practiceRelay      string
	verbose            bool

	statsRegion string
	statsWeak   int
	statsRecent int
	statsReset  bool

	facesRegion string
	facesCount  int
	facesAll    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "facedrill",
		Short:         "Face and name memory trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
	rootCmd.Flags().StringVar(&practiceRegion, "region", "", "face region: japan, usa, europe, asia")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", "", "difficulty: easy, medium, hard")
	rootCmd.Flags().BoolVar(&practiceOffline, "offline", false, "use bundled images only")
	rootCmd.Flags().StringVar(&practiceEndpoint, "endpoint", faceapi.DefaultEndpoint, "face image endpoint")
	rootCmd.Flags().StringVar(&practiceRelay, "relay", faceapi.DefaultRelay, "relay prefix for the endpoint, empty for direct requests")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFacesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles the wired components behind every command.
type app struct {
	log      *zap.Logger
	primary  *storage.SQLite
	kv       *storage.Store
	source   *faceapi.Source
	cache    *facecache.Cache
	sessions *session.Store
	stats    *stats.Aggregator
	trainer  *trainer.Trainer
}

func openApp(offline bool, endpoint, relay string) (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	primary, err := storage.OpenSQLite(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	fallback := storage.NewFlatFile(config.DefaultFallbackPath(), storage.DefaultFlatFileLimit)
	kv := storage.New(primary, fallback, log)

	source := faceapi.New(faceapi.Options{
		Endpoint: endpoint,
		Relay:    relay,
		Offline:  offline,
	}, log)
	optimizer := imageopt.New(config.DefaultAssetRoot(), log)
	cache := facecache.New(kv, source, optimizer, log)

	sessions := session.New(kv, log)
	agg := stats.New(kv, log)

	return &app{
		log:      log,
		primary:  primary,
		kv:       kv,
		source:   source,
		cache:    cache,
		sessions: sessions,
		stats:    agg,
		trainer:  trainer.New(cache, sessions, agg, log),
	}, nil
}

func (a *app) close() {
	if err := a.primary.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	// Best-effort flush of buffered log entries.
	_ = a.log.Sync()
}

func (a *app) init(ctx context.Context) error {
	if err := a.cache.Init(ctx); err != nil {
		return fmt.Errorf("failed to load face cache: %w", err)
	}
	if err := a.stats.Init(ctx); err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return nil
}

// newLogger writes structured logs to a file in the data directory so the
// TUI stays clean.
func newLogger() (*zap.Logger, error) {
	dir := config.DefaultDataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "facedrill.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "region", &practiceRegion, fileCfg.Practice.Region)
	applyBoolConfig(cmd, "offline", &practiceOffline, fileCfg.Faces.Offline)
	applyStringConfig(cmd, "endpoint", &practiceEndpoint, fileCfg.Faces.Endpoint)
	applyStringConfig(cmd, "relay", &practiceRelay, fileCfg.Faces.Relay)

	a, err := openApp(practiceOffline, practiceEndpoint, practiceRelay)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.init(ctx); err != nil {
		return err
	}

	region, err := resolveRegion(ctx, cmd, a.sessions)
	if err != nil {
		return err
	}
	level, err := resolveLevel(ctx, cmd, a.sessions, fileCfg)
	if err != nil {
		return err
	}

	resumable, err := a.trainer.Resume(ctx)
	if err != nil {
		return err
	}

	m := tui.NewModel(ctx, a.trainer, region, level, resumable, a.log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveRegion prefers the flag, then the config file, then the region of
// the previous run.
func resolveRegion(ctx context.Context, cmd *cobra.Command, sessions *session.Store) (model.Region, error) {
	if practiceRegion != "" {
		return model.ParseRegion(practiceRegion)
	}
	if !cmd.Flags().Changed("region") {
		if last, ok := sessions.LastRegion(ctx); ok {
			return last, nil
		}
	}
	return defaultRegion, nil
}

// resolveLevel prefers the flag, then the config file's face count, then the
// difficulty of the previous run.
func resolveLevel(ctx context.Context, cmd *cobra.Command, sessions *session.Store, fileCfg config.FileConfig) (model.DifficultyLevel, error) {
	if practiceDifficulty != "" {
		level, ok := trainer.LevelByKey(strings.ToLower(practiceDifficulty))
		if !ok {
			return model.DifficultyLevel{}, fmt.Errorf("unknown difficulty %q (easy, medium, hard)", practiceDifficulty)
		}
		return level, nil
	}
	if !cmd.Flags().Changed("difficulty") && fileCfg.Practice.Difficulty != nil {
		return trainer.LevelByCount(*fileCfg.Practice.Difficulty), nil
	}
	if last, ok := sessions.LastDifficulty(ctx); ok {
		if level, ok := trainer.LevelByKey(last); ok {
			return level, nil
		}
	}
	return trainer.DefaultLevel, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsRegion, "region", "", "filter weak faces by region")
	cmd.Flags().IntVar(&statsWeak, "weak", 0, "show only the top N weak faces")
	cmd.Flags().IntVar(&statsRecent, "recent", 0, "show only the last N results")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "discard all statistics")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(true, "", "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.stats.Init(ctx); err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	if statsReset {
		if err := a.stats.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Statistics reset.")
		return nil
	}

	if statsWeak > 0 || statsRegion != "" {
		var region model.Region
		if statsRegion != "" {
			region, err = model.ParseRegion(statsRegion)
			if err != nil {
				return err
			}
		}
		weak, err := a.stats.GetWeakFaces(ctx, region, statsWeak)
		if err != nil {
			return err
		}
		if len(weak) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No weak faces recorded.")
			return nil
		}
		return stats.RenderWeakFaces(cmd.OutOrStdout(), weak)
	}

	data, err := a.stats.GetStats(ctx)
	if err != nil {
		return err
	}
	if statsRecent > 0 {
		recent, err := a.stats.GetRecentResults(ctx, statsRecent)
		if err != nil {
			return err
		}
		data.RecentResults = recent
	}
	progress, err := a.stats.Progress(ctx)
	if err != nil {
		return err
	}
	return stats.RenderSummary(cmd.OutOrStdout(), data, progress)
}

func newFacesCmd() *cobra.Command {
	facesCmd := &cobra.Command{
		Use:   "faces",
		Short: "Manage the face cache",
	}

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Show cached face counts per region",
		Args:  cobra.NoArgs,
		RunE:  runFacesCountCmd,
	}

	preloadCmd := &cobra.Command{
		Use:   "preload",
		Short: "Generate faces into the cache ahead of time",
		Args:  cobra.NoArgs,
		RunE:  runFacesPreloadCmd,
	}
	preloadCmd.Flags().StringVar(&facesRegion, "region", string(defaultRegion), "region to preload")
	preloadCmd.Flags().IntVar(&facesCount, "count", 10, "number of faces to generate")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached faces",
		Args:  cobra.NoArgs,
		RunE:  runFacesClearCmd,
	}
	clearCmd.Flags().StringVar(&facesRegion, "region", "", "region to clear")
	clearCmd.Flags().BoolVar(&facesAll, "all", false, "clear every region")

	facesCmd.AddCommand(countCmd)
	facesCmd.AddCommand(preloadCmd)
	facesCmd.AddCommand(clearCmd)
	return facesCmd
}

func runFacesCountCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(true, "", "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.cache.Init(ctx); err != nil {
		return err
	}
	for _, region := range model.AllRegions {
		count, err := a.cache.GetFaceCount(ctx, region)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", region, count); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runFacesPreloadCmd(cmd *cobra.Command, _ []string) error {
	region, err := model.ParseRegion(facesRegion)
	if err != nil {
		return err
	}
	if facesCount <= 0 {
		return fmt.Errorf("--count must be greater than 0")
	}

	a, err := openApp(false, faceapi.DefaultEndpoint, faceapi.DefaultRelay)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.cache.Init(ctx); err != nil {
		return err
	}
	for i := 0; i < facesCount; i++ {
		if _, err := a.cache.GenerateFace(ctx, region); err != nil {
			return fmt.Errorf("failed to generate face: %w", err)
		}
	}
	count, err := a.cache.GetFaceCount(ctx, region)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d faces, %s now holds %d.\n", facesCount, region, count)
	if a.source.Offline() {
		logErrln("Remote generator unreachable, bundled images were used.")
	}
	return nil
}

func runFacesClearCmd(cmd *cobra.Command, _ []string) error {
	if !facesAll && facesRegion == "" {
		return fmt.Errorf("pass --region <name> or --all")
	}

	a, err := openApp(true, "", "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.cache.Init(ctx); err != nil {
		return err
	}
	if facesAll {
		if err := a.cache.ClearAllData(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all regions.")
		return nil
	}
	region, err := model.ParseRegion(facesRegion)
	if err != nil {
		return err
	}
	if err := a.cache.ClearRegionData(ctx, region); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", region)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# facedrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# region = %q          # Face region: japan, usa, europe, asia
# difficulty = 10      # Faces per run, mapped to the nearest preset

[faces]
# endpoint = %q
# relay = %q
# offline = false      # Use bundled images only
`,
		string(defaultRegion),
		faceapi.DefaultEndpoint,
		faceapi.DefaultRelay,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
