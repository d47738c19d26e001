// Package config provides configuration loading and defaults for archivewatch.
package config

// DefaultWatchPaths are the directories watched when none are configured.
var DefaultWatchPaths = []string{"~/Documents"}

// DefaultArchiveDir is where the archiver collaborator stores accepted files.
const DefaultArchiveDir = "~/Archive"

// DefaultConfigDir is the default location for archivewatch configuration.
const DefaultConfigDir = "~/.config/archivewatch"

// DefaultDBName is the filename for the SQLite event history.
const DefaultDBName = "archivewatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultInterval is how often watched directories are re-scanned.
const DefaultInterval = "1m"

// DefaultExtensions is the process-wide extension allow-list: lower-case,
// without the leading dot. It is read-only; callers override it per call.
var DefaultExtensions = []string{
	"csv", "doc", "docx", "gz", "jpeg", "jpg", "json", "log", "md",
	"odt", "pdf", "png", "tar", "txt", "xls", "xlsx", "yaml", "yml", "zip",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
