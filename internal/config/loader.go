package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. They double as config file keys; the environment
// variable for a key is FILIZER_ followed by the upper-cased key.
const (
	KeyURL         = "url"
	KeyToken       = "token"
	KeyPath        = "path"
	KeyLog         = "log"
	KeyLevel       = "level"
	KeyVerbose     = "verbose"
	KeyDryRun      = "dry_run"
	KeyForce       = "force"
	KeyExclude     = "exclude"
	KeyTimeout     = "timeout"
	KeyMaxAttempts = "max_attempts"
	KeyProxy       = "proxy"
	KeyFormat      = "format"
	KeyOutput      = "output"
	KeyHistory     = "history"
	KeyDBDir       = "db_dir"
	KeyConfig      = "config"
)

// Flag names registered by RegisterFlags.
const (
	FlagURL         = "url"
	FlagToken       = "token"
	FlagPath        = "path"
	FlagLog         = "log"
	FlagLevel       = "level"
	FlagVerbose     = "verbose"
	FlagDryRun      = "dry-run"
	FlagForce       = "force"
	FlagExclude     = "exclude"
	FlagTimeout     = "timeout"
	FlagMaxAttempts = "max-attempts"
	FlagProxy       = "proxy"
	FlagFormat      = "format"
	FlagOutput      = "output"
	FlagNoHistory   = "no-history"
	FlagDBDir       = "db-dir"
	FlagConfig      = "config"
)

// flagKeys maps flag names to the keys they override.
// --no-history is inverted and handled separately.
var flagKeys = map[string]string{
	FlagURL:         KeyURL,
	FlagToken:       KeyToken,
	FlagPath:        KeyPath,
	FlagLog:         KeyLog,
	FlagLevel:       KeyLevel,
	FlagVerbose:     KeyVerbose,
	FlagDryRun:      KeyDryRun,
	FlagForce:       KeyForce,
	FlagExclude:     KeyExclude,
	FlagTimeout:     KeyTimeout,
	FlagMaxAttempts: KeyMaxAttempts,
	FlagProxy:       KeyProxy,
	FlagFormat:      KeyFormat,
	FlagOutput:      KeyOutput,
	FlagDBDir:       KeyDBDir,
	FlagConfig:      KeyConfig,
}

// RegisterFlags adds the configuration flags to the flag set.
// Flag defaults are left empty so that environment variables and the config
// file can supply values when a flag is not given.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(FlagURL, "", "registry base URL (env FILIZER_URL)")
	flags.String(FlagToken, "", "registry bearer token (env FILIZER_TOKEN)")
	flags.String(FlagPath, "", "directory to scan (default \".\")")
	flags.String(FlagLog, "", "also write logs to this file")
	flags.String(FlagLevel, "", "log level: DEBUG, INFO, WARNING or ERROR (default INFO)")
	flags.BoolP(FlagVerbose, "v", false, "enable debug logging")
	flags.Bool(FlagDryRun, false, "preview actions without changing files or the registry")
	flags.Bool(FlagForce, false, "delete files without asking for confirmation")
	flags.StringSlice(FlagExclude, nil, "directory names to skip, repeatable or comma separated (default .git,node_modules,__pycache__,.venv)")
	flags.Duration(FlagTimeout, 0, "timeout of each registry request (default 10s)")
	flags.Int(FlagMaxAttempts, 0, "attempts per registry request including the first (default 3)")
	flags.String(FlagProxy, "", "SOCKS5 proxy for registry traffic (host:port)")
	flags.StringP(FlagFormat, "f", "", "report format: text, json, markdown or yaml (default text)")
	flags.StringP(FlagOutput, "o", "", "write the report to this file instead of stdout")
	flags.Bool(FlagNoHistory, false, "do not save the scan to the history database")
	flags.String(FlagDBDir, "", "history database directory (default $XDG_DATA_HOME/filizer)")
	flags.StringP(FlagConfig, "c", "", "config file (default $XDG_CONFIG_HOME/filizer/config.yaml)")
}

// Load resolves the configuration from flags, the environment, the config
// file and the defaults. flags may be nil.
//
// A config file given with --config or FILIZER_CONFIG must exist; the
// default config file is optional.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flagName, key := range flagKeys {
			flag := flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
			}
		}
	}

	used, err := readConfigFile(v, strings.TrimSpace(v.GetString(KeyConfig)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		URL:         strings.TrimSpace(v.GetString(KeyURL)),
		Token:       strings.TrimSpace(v.GetString(KeyToken)),
		Path:        v.GetString(KeyPath),
		LogFile:     v.GetString(KeyLog),
		Level:       NormalizeLevel(v.GetString(KeyLevel)),
		Verbose:     v.GetBool(KeyVerbose),
		DryRun:      v.GetBool(KeyDryRun),
		Force:       v.GetBool(KeyForce),
		Exclude:     splitList(v.GetStringSlice(KeyExclude)),
		Timeout:     durationValue(v, KeyTimeout),
		MaxAttempts: v.GetInt(KeyMaxAttempts),
		Proxy:       strings.TrimSpace(v.GetString(KeyProxy)),
		Format:      strings.ToLower(strings.TrimSpace(v.GetString(KeyFormat))),
		Output:      v.GetString(KeyOutput),
		History:     v.GetBool(KeyHistory),
		DBDir:       v.GetString(KeyDBDir),
		ConfigFile:  used,
	}

	if flags != nil && flags.Changed(FlagNoHistory) {
		if noHistory, err := flags.GetBool(FlagNoHistory); err == nil && noHistory {
			cfg.History = false
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := NewConfig()
	v.SetDefault(KeyPath, defaults.Path)
	v.SetDefault(KeyLevel, defaults.Level)
	v.SetDefault(KeyExclude, defaults.Exclude)
	v.SetDefault(KeyTimeout, defaults.Timeout)
	v.SetDefault(KeyMaxAttempts, defaults.MaxAttempts)
	v.SetDefault(KeyFormat, defaults.Format)
	v.SetDefault(KeyHistory, defaults.History)
	v.SetDefault(KeyDBDir, defaults.DBDir)
}

// readConfigFile reads path, or the default config file when path is
// empty, and returns the file that was used.
func readConfigFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
	v.AddConfigPath(XDGConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// splitList flattens comma separated entries and drops empty names.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// durationValue reads a duration. Bare numbers are seconds.
func durationValue(v *viper.Viper, key string) time.Duration {
	switch raw := v.Get(key).(type) {
	case int:
		return time.Duration(raw) * time.Second
	case int64:
		return time.Duration(raw) * time.Second
	case float64:
		return time.Duration(raw * float64(time.Second))
	case string:
		if seconds, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return time.Duration(seconds) * time.Second
		}
		return v.GetDuration(key)
	default:
		return v.GetDuration(key)
	}
}
