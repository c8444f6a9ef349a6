// Package cfg provides configuration and command-line interface setup for
// grabarr.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grabarr/internal/cookies"
	"grabarr/internal/database"
	"grabarr/internal/domain/consts"
	"grabarr/internal/domain/keys"
	"grabarr/internal/downloads"
	"grabarr/internal/models"
	"grabarr/internal/platform"
	"grabarr/internal/repo"
	"grabarr/internal/server"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrReported marks a failure that was already rendered to the user; callers
// should exit non-zero without printing it again.
var ErrReported = errors.New("already reported")

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:           "grabarr [url]",
	Short:         "grabarr downloads video and audio from supported platforms.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile := viper.GetString(keys.ConfigFile); configFile != "" {
			cInfo, err := os.Stat(configFile)
			if err != nil {
				return fmt.Errorf("failed check for config file path: %w", err)
			}
			if cInfo.IsDir() {
				return fmt.Errorf("config file %q is a directory, should be a file", configFile)
			}

			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed loading config file: %w", err)
			}
		}

		if lvl := viper.GetString(keys.LogLevel); lvl != "" {
			parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
			if err != nil {
				return fmt.Errorf("invalid log level %q", lvl)
			}
			zerolog.SetGlobalLevel(parsed)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd, args)
	},
}

// Execute parses flags, wires the commands and runs the selected one.
func Execute(ctx context.Context, logger zerolog.Logger) error {
	log = logger

	viper.SetEnvPrefix("grabarr")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	initRootFlags()
	rootCmd.AddCommand(initServeCmd())
	rootCmd.AddCommand(initHistoryCmd())

	return rootCmd.ExecuteContext(ctx)
}

// runDownload is the root command: download a URL, or print metadata or the
// supported platform list.
func runDownload(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	asJSON := viper.GetBool(keys.JSONOutput)

	if viper.GetBool(keys.ListPlatforms) {
		det, err := platform.NewDetector(platform.DefaultPatterns())
		if err != nil {
			return err
		}
		return renderPlatforms(w, det.Platforms(), asJSON)
	}

	if len(args) == 0 {
		return errors.New("a URL argument is required (or use --platforms)")
	}
	url := args[0]

	dlType, err := models.ParseDownloadType(viper.GetString(keys.DownloadType))
	if err != nil {
		return err
	}

	dl, _, closeFn, err := buildDownloader()
	if err != nil {
		return err
	}
	defer closeFn()

	// Text-mode errors go to stderr; JSON output always goes to stdout so
	// it stays machine-readable.
	errW := cmd.ErrOrStderr()
	if asJSON {
		errW = w
	}

	if viper.GetBool(keys.InfoOnly) {
		info, err := dl.Info(cmd.Context(), url)
		if err != nil {
			if rerr := renderInfo(errW, models.ErrorVideoInfo(err), asJSON); rerr != nil {
				return rerr
			}
			return ErrReported
		}
		return renderInfo(w, info, asJSON)
	}

	result, err := dl.Download(cmd.Context(), url, dlType)
	if err != nil {
		if rerr := renderResult(errW, models.ErrorDownloadResult(err), asJSON); rerr != nil {
			return rerr
		}
		return ErrReported
	}
	return renderResult(w, result, asJSON)
}

// runServe runs the HTTP API until the context is cancelled.
func runServe(cmd *cobra.Command, args []string) error {
	dl, store, closeFn, err := buildDownloader()
	if err != nil {
		return err
	}
	defer closeFn()

	srv := server.New(dl, store, log)
	return srv.Start(cmd.Context(), viper.GetInt(keys.ServerPort))
}

// runHistory prints the most recent recorded downloads.
func runHistory(cmd *cobra.Command, args []string) error {
	db, err := database.Open(dbPath())
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := repo.NewDownloadStore(db).LatestDownloads(viper.GetInt(keys.HistoryLimit))
	if err != nil {
		return err
	}
	return renderHistory(cmd.OutOrStdout(), recs, viper.GetBool(keys.JSONOutput))
}

// buildDownloader assembles the orchestrator and its collaborators from the
// current configuration. The returned func closes the history database.
func buildDownloader() (*downloads.Downloader, *repo.DownloadStore, func(), error) {
	det, err := platform.NewDetector(platform.DefaultPatterns())
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(dbPath())
	if err != nil {
		return nil, nil, nil, err
	}
	store := repo.NewDownloadStore(db)

	opts := []downloads.Option{downloads.WithRecorder(store)}
	if viper.GetBool(keys.BrowserCookies) {
		mgr, err := cookies.NewManager(filepath.Join(progDir(), "cookies"), log)
		if err != nil {
			log.Warn().Err(err).Msg("browser cookies unavailable, continuing without them")
		} else {
			opts = append(opts, downloads.WithCookies(mgr))
		}
	}

	dl, err := downloads.New(downloads.Config{
		OutputDir: viper.GetString(keys.OutputDir),
	}, det, log, opts...)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return dl, store, func() { db.Close() }, nil
}

// dbPath returns the history database location, defaulting to the program
// directory under the user's home.
func dbPath() string {
	if p := viper.GetString(keys.DBPath); p != "" {
		return p
	}
	return filepath.Join(progDir(), consts.DefaultDBFile)
}

// progDir returns the per-user grabarr directory.
func progDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return consts.ProgDirName
	}
	return filepath.Join(home, consts.ProgDirName)
}
