package cfg

import (
	"grabarr/internal/domain/consts"
	"grabarr/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initRootFlags initializes the download flags on the root command.
func initRootFlags() {
	rootCmd.PersistentFlags().String(keys.ConfigFile, "", "Path to a config file (any Viper-supported format)")
	viper.BindPFlag(keys.ConfigFile, rootCmd.PersistentFlags().Lookup(keys.ConfigFile))

	rootCmd.PersistentFlags().String(keys.LogLevel, "info", "Log level (trace, debug, info, warn, error)")
	viper.BindPFlag(keys.LogLevel, rootCmd.PersistentFlags().Lookup(keys.LogLevel))

	rootCmd.PersistentFlags().StringP(keys.OutputDir, "o", consts.DefaultOutputDir, "Directory downloads are written into")
	viper.BindPFlag(keys.OutputDir, rootCmd.PersistentFlags().Lookup(keys.OutputDir))

	rootCmd.PersistentFlags().String(keys.DBPath, "", "Path to the download-history database")
	viper.BindPFlag(keys.DBPath, rootCmd.PersistentFlags().Lookup(keys.DBPath))

	rootCmd.PersistentFlags().Bool(keys.BrowserCookies, false, "Harvest browser cookies for age or login gated content")
	viper.BindPFlag(keys.BrowserCookies, rootCmd.PersistentFlags().Lookup(keys.BrowserCookies))

	rootCmd.Flags().StringP(keys.DownloadType, "t", "video", "Download type: video or audio")
	viper.BindPFlag(keys.DownloadType, rootCmd.Flags().Lookup(keys.DownloadType))

	rootCmd.Flags().BoolP(keys.InfoOnly, "i", false, "Get video information without downloading")
	viper.BindPFlag(keys.InfoOnly, rootCmd.Flags().Lookup(keys.InfoOnly))

	rootCmd.Flags().Bool(keys.ListPlatforms, false, "List supported platforms")
	viper.BindPFlag(keys.ListPlatforms, rootCmd.Flags().Lookup(keys.ListPlatforms))

	rootCmd.PersistentFlags().Bool(keys.JSONOutput, false, "Output results as JSON")
	viper.BindPFlag(keys.JSONOutput, rootCmd.PersistentFlags().Lookup(keys.JSONOutput))
}

// initServeCmd builds the HTTP API server command.
func initServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the grabarr HTTP API server.",
		RunE:  runServe,
	}

	serveCmd.Flags().IntP(keys.ServerPort, "p", consts.DefaultServerPort, "Port the API listens on")
	viper.BindPFlag(keys.ServerPort, serveCmd.Flags().Lookup(keys.ServerPort))

	return serveCmd
}

// initHistoryCmd builds the download-history command.
func initHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded downloads.",
		RunE:  runHistory,
	}

	historyCmd.Flags().IntP(keys.HistoryLimit, "n", 25, "Maximum number of records to show")
	viper.BindPFlag(keys.HistoryLimit, historyCmd.Flags().Lookup(keys.HistoryLimit))

	return historyCmd
}
