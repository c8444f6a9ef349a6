// Package keys holds Viper configuration key names.
package keys

// Program settings
const (
	ConfigFile string = "config-file"
	LogLevel   string = "log-level"
	OutputDir  string = "output"
	DBPath     string = "db-path"
)

// Download settings
const (
	DownloadType   string = "type"
	InfoOnly       string = "info"
	JSONOutput     string = "json"
	ListPlatforms  string = "platforms"
	BrowserCookies string = "browser-cookies"
)

// Server settings
const (
	ServerPort string = "port"
)

// History settings
const (
	HistoryLimit string = "limit"
)
