// Package cli wires the application together behind a cobra command tree.
package cli

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/leaflens/leaflens/internal/auth"
	"github.com/leaflens/leaflens/internal/config"
	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/history"
	"github.com/leaflens/leaflens/internal/logger"
	"github.com/leaflens/leaflens/internal/session"
	"github.com/leaflens/leaflens/internal/workflow"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build metadata, set through -ldflags at release time.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	flagServer   string
	flagLanguage string
	flagVerbose  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "leaflens",
	Short: "Identify plants from photos, in your language",
	Long: `leaflens identifies a plant from a photo and describes it: scientific
name, care requirements, medicinal uses, and more. Descriptions can be
translated into fifteen languages and read aloud, and every identification
is saved to your history.

Start with 'leaflens signup', then 'leaflens identify photo.jpg'. Run
'leaflens shell' for an interactive session.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "backend server URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&flagLanguage, "lang", "", "language code for descriptions (default en)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// app holds the wired-up application services. Commands build it on demand
// so flag and config parsing happen after cobra has run.
type app struct {
	opts     *config.Options
	log      *zap.Logger
	gw       *gateway.Client
	sessions *session.FileStore
	auth     *auth.Controller
	flow     *workflow.Workflow
	hist     *history.Service
	cacheDB  interface{ Close() error }
}

func newApp() (*app, error) {
	opts, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		opts.BaseURL = flagServer
	}
	if flagLanguage != "" {
		opts.Language = flagLanguage
	}
	if flagVerbose {
		opts.Verbose = true
	}

	lg := logger.New()
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	if err := lg.Init(level); err != nil {
		return nil, err
	}

	gw := gateway.New(opts.BaseURL, &http.Client{Timeout: opts.Timeout}, lg.Log)

	store, err := session.NewFileStore(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	a := &app{
		opts:     opts,
		log:      lg.Log,
		gw:       gw,
		sessions: store,
		auth:     auth.NewController(store, gw, lg.Log),
		flow:     workflow.New(gw, store, lg.Log),
	}

	var cache history.Cache
	db, err := history.OpenCache(filepath.Join(opts.ConfigDir, "history.db"))
	if err != nil {
		lg.Log.Warn("history cache unavailable", zap.Error(err))
	} else {
		cache = history.NewSQLiteRepository(db)
		a.cacheDB = db
	}
	a.hist = history.NewService(gw, cache, lg.Log)

	return a, nil
}

func (a *app) close() {
	if a.cacheDB != nil {
		_ = a.cacheDB.Close()
	}
	_ = a.log.Sync()
}

// prompt reads one line from stdin after printing label.
func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
