// Package cmd implements the csmatchstats command line interface.
//
// parse   - decode a demo, derive its statistics and store them
// show    - print a stored match
// list    - list stored matches
// rounds  - print the round timeline of a demo
// history - a player's stored matches in chronological order
// verdict - one player's outcome of a stored match
// summary - database overview
// sql     - run a raw query
// drop    - delete one match or the whole database
// shell   - interactive session over the database
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pable/go-cs-matchstats/internal/config"
	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var (
	cfgFile   string
	conf      config.Config
	logCloser = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "csmatchstats",
	Short: "CS2 match statistics tool",
	Long:  "Decode CS2 .dem files and derive match, team and player statistics from them.",

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { logCloser() },
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.csmatchstats/config.yaml)")
	flags.String("db", "", "path to SQLite database")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write logs to this file")
	flags.Int("half-length", 0, "rounds per regulation half")
	flags.Duration("trade-window", 0, "time after a death within which a revenge kill counts as a trade")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(verdictCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"db":           "db",
	"log-level":    "log.level",
	"log-file":     "log.file",
	"half-length":  "match.half_length",
	"trade-window": "match.trade_window",
}

func setup(cmd *cobra.Command, _ []string) error {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	c, err := config.Read(v, cfgFile)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	conf = c
	logCloser = log.MustCreateLogger(conf.Log.File, level)
	slog.Debug("Configuration loaded", slog.String("config", v.ConfigFileUsed()), slog.String("db", conf.DB))
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// openDB opens the configured database, creating its directory when needed.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(conf.DB), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(conf.DB)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// observerOrDefault parses a per-command observer flag, falling back to the
// configured observer when the flag is empty.
func observerOrDefault(flag string) (model.PlayerID, error) {
	if flag != "" {
		return config.ParseSteamID(flag)
	}
	return conf.ObserverID()
}

// requireSteamID parses a steam id that must not be empty.
func requireSteamID(s string) (model.PlayerID, error) {
	id, err := config.ParseSteamID(s)
	if err != nil {
		return model.PlayerID{}, err
	}
	if !id.Valid() {
		return model.PlayerID{}, fmt.Errorf("%w: %q", config.ErrInvalidObserver, s)
	}
	return id, nil
}
