package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "filizer"

	// EnvPrefix is the prefix of environment variables read by Load.
	EnvPrefix = "FILIZER"

	// DefaultConfigFile is the config file name inside XDGConfigDir.
	DefaultConfigFile = "config.yaml"

	// DefaultPath is the directory scanned when none is given.
	DefaultPath = "."

	// DefaultTimeout bounds each registry request attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is the total number of attempts per registry
	// request, the first one included.
	DefaultMaxAttempts = 3

	// DefaultLevel is the default log level.
	DefaultLevel = "INFO"

	// DefaultFormat is the default report format.
	DefaultFormat = FormatText
)

// Report formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// DefaultExcludes returns the directory names skipped when none are
// configured.
func DefaultExcludes() []string {
	return []string{".git", "node_modules", "__pycache__", ".venv"}
}

// Levels lists the accepted log level names.
var Levels = []string{"DEBUG", "INFO", "WARNING", "ERROR"}

// Formats lists the accepted report formats.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatYAML}

// Config holds all configuration options for a scan.
// It is built once by Load and passed to the components that need it.
type Config struct {
	// URL is the registry base URL.
	URL string

	// Token is the bearer token sent to the registry. It may be empty.
	Token string

	// Path is the directory to scan.
	Path string

	// LogFile, when set, receives a copy of the log output.
	LogFile string

	// Level is the log level name (DEBUG, INFO, WARNING or ERROR).
	Level string

	// Verbose forces debug logging regardless of Level.
	Verbose bool

	// DryRun previews actions and submissions without performing them.
	DryRun bool

	// Force deletes without asking for confirmation.
	Force bool

	// Exclude lists directory names that are never entered.
	Exclude []string

	// Timeout bounds each registry request attempt.
	Timeout time.Duration

	// MaxAttempts is the total number of attempts per registry request.
	MaxAttempts int

	// Proxy is an optional SOCKS5 proxy address (host:port) for registry
	// traffic.
	Proxy string

	// Format is the report format.
	Format string

	// Output is the report file. Empty means standard output.
	Output string

	// History enables saving the scan report to the history database.
	History bool

	// DBDir is the directory of the history database.
	DBDir string

	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Path:        DefaultPath,
		Level:       DefaultLevel,
		Exclude:     DefaultExcludes(),
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		Format:      DefaultFormat,
		History:     true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for filizer.
// On Linux: ~/.local/share/filizer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for filizer.
// On Linux: ~/.config/filizer
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultConfigPath returns the path of the default config file.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigDir(), DefaultConfigFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrNoURL
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}

	if strings.TrimSpace(c.Path) == "" {
		return ErrNoPath
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if !slices.Contains(Levels, NormalizeLevel(c.Level)) {
		return ErrInvalidLevel
	}

	if !slices.Contains(Formats, strings.ToLower(c.Format)) {
		return ErrInvalidFormat
	}

	return nil
}

// NormalizeLevel upper-cases a level name and maps WARN to WARNING.
func NormalizeLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "WARN" {
		return "WARNING"
	}
	return level
}
