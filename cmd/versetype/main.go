// Package main provides the CLI entrypoint for versetype.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/versetype/internal/bible"
	"github.com/verte-zerg/versetype/internal/config"
	"github.com/verte-zerg/versetype/internal/logging"
	"github.com/verte-zerg/versetype/internal/matcher"
	"github.com/verte-zerg/versetype/internal/model"
	"github.com/verte-zerg/versetype/internal/passage"
	"github.com/verte-zerg/versetype/internal/stats"
	"github.com/verte-zerg/versetype/internal/statsui"
	"github.com/verte-zerg/versetype/internal/store"
	"github.com/verte-zerg/versetype/internal/tui"
)

const (
	defaultTranslation = "esv"
	defaultCurveWindow = 7
	recorderBuffer     = 64
	loadTimeout        = 5 * time.Second
)

var (
	practiceTranslation string
	practiceVerse       int
	practicePassages    string
	practiceResume      bool

	historyTranslation string
	historySince       string
	historyBook        string
	historyAll         bool
	historyCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "versetype [book chapter[:verse]]",
		Short:         "TUI typing trainer for Bible passages",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ArbitraryArgs,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceTranslation, "translation", defaultTranslation, "translation code")
	rootCmd.Flags().IntVar(&practiceVerse, "verse", 0, "verse to start at")
	rootCmd.Flags().StringVar(&practicePassages, "passages", config.DefaultPassagesDir(), "passage directory")
	rootCmd.Flags().BoolVar(&practiceResume, "resume", false, "continue after the last typed verse when no reference is given")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newBooksCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newLogCmd())

	return rootCmd
}

// appEnv carries what every command needs after config is loaded.
type appEnv struct {
	file   config.FileConfig
	meta   bible.Metadata
	logger *zap.Logger
}

func loadEnv() (*appEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logOpts := logging.Options{Path: config.DefaultLogPath()}
	if fileCfg.Log.Level != nil {
		logOpts.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.File != nil {
		logOpts.Path = *fileCfg.Log.File
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	meta := bible.Standard()
	if fileCfg.Metadata.Overrides != nil {
		meta, err = meta.WithOverrides(*fileCfg.Metadata.Overrides)
		if err != nil {
			_ = logger.Sync()
			return nil, fmt.Errorf("failed to load metadata overrides: %w", err)
		}
	}
	return &appEnv{file: fileCfg, meta: meta, logger: logger}, nil
}

func (e *appEnv) close() {
	// Best-effort flush; syncing a file logger on exit rarely fails.
	_ = e.logger.Sync()
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	practice := env.file.Practice
	applyStringConfig(cmd, "translation", &practiceTranslation, practice.Translation)
	applyStringConfig(cmd, "passages", &practicePassages, practice.PassagesDir)
	applyBoolConfig(cmd, "resume", &practiceResume, practice.Resume)

	cfg := model.Config{
		Translation:  strings.TrimSpace(practiceTranslation),
		Verse:        practiceVerse,
		PassagesDir:  practicePassages,
		ActiveWindow: matcher.DefaultActiveWindow,
		Resume:       practiceResume,
	}
	if practice.ActiveWindow != nil && practice.ActiveWindow.Duration > 0 {
		cfg.ActiveWindow = practice.ActiveWindow.Duration
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ref, err := startRef(cmd.Context(), env.meta, st, cfg, args)
	if err != nil {
		return err
	}
	cfg.Book, cfg.Chapter = ref.Book, ref.Chapter
	if cfg.Verse == 0 {
		cfg.Verse = ref.Verse
	}

	provider := passage.NewDirProvider(cfg.PassagesDir)
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	p, err := provider.Passage(ctx, cfg.Translation, cfg.Book, cfg.Chapter)
	cancel()
	if err != nil {
		return passageLoadError(provider, cfg, err)
	}

	recorder := store.NewRecorder(st, env.logger, recorderBuffer)
	defer recorder.Close()

	env.logger.Info("starting practice",
		zap.String("translation", cfg.Translation),
		zap.String("book", cfg.Book),
		zap.Int("chapter", cfg.Chapter),
		zap.Int("verse", cfg.Verse))

	m, err := tui.NewModel(tui.Options{
		Config:   cfg,
		Provider: provider,
		Metadata: env.meta,
		Recorder: recorder,
		Logger:   env.logger,
	}, p)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startRef picks the chapter to practice from args, or from history when
// resuming.
func startRef(ctx context.Context, meta bible.Metadata, st *store.Store, cfg model.Config, args []string) (model.VerseRef, error) {
	if len(args) > 0 {
		ref, err := meta.ParseReference(strings.Join(args, " "))
		if err != nil {
			return model.VerseRef{}, fmt.Errorf("invalid reference: %w", err)
		}
		return ref, nil
	}
	if !cfg.Resume {
		return firstRef(meta), nil
	}
	last, ok, err := st.LastTypedVerse(ctx, cfg.Translation)
	if err != nil {
		return model.VerseRef{}, fmt.Errorf("failed to load last typed verse: %w", err)
	}
	if !ok {
		return firstRef(meta), nil
	}
	return resumeRef(meta, model.VerseRef{Book: last.Book, Chapter: last.Chapter, Verse: last.Verse}), nil
}

// resumeRef returns the verse after last, moving to the next chapter at the
// end of one and back to the start after the final book.
func resumeRef(meta bible.Metadata, last model.VerseRef) model.VerseRef {
	book, ok := meta.Book(last.Book)
	if !ok {
		return firstRef(meta)
	}
	if last.Verse < book.VersesIn(last.Chapter) {
		return model.VerseRef{Book: last.Book, Chapter: last.Chapter, Verse: last.Verse + 1}
	}
	next, chapter, ok := meta.Next(last.Book, last.Chapter)
	if !ok {
		return firstRef(meta)
	}
	return model.VerseRef{Book: next, Chapter: chapter}
}

func firstRef(meta bible.Metadata) model.VerseRef {
	books := meta.Books()
	if len(books) == 0 {
		return model.VerseRef{}
	}
	return model.VerseRef{Book: books[0].Slug, Chapter: 1}
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

func newBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List books and chapter counts",
		Args:  cobra.NoArgs,
		RunE:  runBooksCmd,
	}
}

func runBooksCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	meta := bible.Standard()
	if fileCfg.Metadata.Overrides != nil {
		if meta, err = meta.WithOverrides(*fileCfg.Metadata.Overrides); err != nil {
			return fmt.Errorf("failed to load metadata overrides: %w", err)
		}
	}
	return writeBooks(cmd.OutOrStdout(), meta)
}

func writeBooks(w io.Writer, meta bible.Metadata) error {
	for _, b := range meta.Books() {
		if _, err := fmt.Fprintf(w, "%-20s %-18s %3d chapters %6d verses\n", b.Name, b.Slug, b.Chapters(), b.TotalVerses()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show progress through the books",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addHistoryFlags(cmd)
	cmd.Flags().StringVar(&historyBook, "book", "", "show the chapters of one book")
	cmd.Flags().BoolVar(&historyAll, "all", false, "list books without progress (plain output)")
	return cmd
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the daily typing log",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
	addHistoryFlags(cmd)
	return cmd
}

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&historyTranslation, "translation", defaultTranslation, "translation code")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window in days")
}

func historyConfig(cmd *cobra.Command, env *appEnv) (model.HistoryConfig, error) {
	applyStringConfig(cmd, "translation", &historyTranslation, env.file.History.Translation)
	applyIntConfig(cmd, "curve-window", &historyCurveWindow, env.file.History.CurveWindow)

	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	cfg := model.HistoryConfig{
		Translation: strings.TrimSpace(historyTranslation),
		Since:       sinceTime,
		CurveWindow: historyCurveWindow,
	}
	if cfg.Translation == "" {
		return model.HistoryConfig{}, fmt.Errorf("--translation must not be empty")
	}
	if cfg.CurveWindow <= 0 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	if historyBook != "" {
		book, err := env.meta.ResolveBook(historyBook)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --book value: %w", err)
		}
		cfg.Book = book.Slug
	}
	return cfg, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	cfg, err := historyConfig(cmd, env)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	load := func(ctx context.Context, cfg model.HistoryConfig) (stats.Report, error) {
		return stats.BuildReport(ctx, st, cfg, env.meta, env.logger)
	}

	if isTerminal(os.Stdout) {
		program := tea.NewProgram(statsui.NewModel(load, env.meta, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := load(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Book != "" {
		book, ok := report.Overview.Book(cfg.Book)
		if !ok {
			return fmt.Errorf("book %q not found", cfg.Book)
		}
		return stats.RenderChapters(out, book)
	}
	return stats.RenderOverview(out, report.Overview, historyAll)
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	defer env.close()

	cfg, err := historyConfig(cmd, env)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(cmd.Context(), st, cfg, env.meta, env.logger)
	if err != nil {
		return err
	}
	return stats.RenderLog(cmd.OutOrStdout(), report.Days, cfg.CurveWindow)
}

func isTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
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
	return fmt.Sprintf(`# versetype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# translation = %q          # Translation code
# passages-dir = %q         # Directory of <translation>/<book>/<chapter>.yaml files
# active-window = %q        # Idle time before the cursor starts blinking
# resume = false            # Continue after the last typed verse

[history]
# translation = %q          # Translation shown by history and log
# curve-window = %d         # Moving average window in days

[log]
# level = %q                # debug, info, warn or error
# file = %q                 # Diagnostic log file

[metadata]
# overrides = ""            # TOML file replacing verse counts of some books
`,
		defaultTranslation,
		config.DefaultPassagesDir(),
		matcher.DefaultActiveWindow.String(),
		defaultTranslation,
		defaultCurveWindow,
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Translation == "" {
		return fmt.Errorf("--translation must not be empty")
	}
	if cfg.Verse < 0 {
		return fmt.Errorf("--verse must be >= 0")
	}
	if cfg.PassagesDir == "" {
		return fmt.Errorf("--passages must not be empty")
	}
	return nil
}

func passageLoadError(provider *passage.DirProvider, cfg model.Config, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load passage: %v", err),
		fmt.Sprintf("expected passage at: %s", provider.Path(cfg.Translation, cfg.Book, cfg.Chapter)),
		"Passage files are YAML documents with a paragraphs list of numbered verses.",
		"Set passages-dir in the config or pass --passages to use another directory.",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
