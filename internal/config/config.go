package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeServer  = "server"
	ModeExtract = "extract"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultRenderScale = 2.0
	DefaultDatabase    = "quote-import.db"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the quotation import service
type Config struct {
	// Server configuration
	Mode string // "server" or "extract"
	Host string
	Port int

	// Import configuration
	ImportDir   string  // directory uploaded documents are stored in
	PresetDir   string  // optional directory of YAML preset overlays
	Database    string  // SQLite database path
	RenderScale float64 // default pixels-per-point scale of the page renderer

	// Application configuration
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum upload size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:        ModeServer,
		Host:        DefaultHost,
		Port:        DefaultPort,
		ImportDir:   filepath.Join(currentDir, "imports"),
		PresetDir:   "",
		Database:    DefaultDatabase,
		RenderScale: DefaultRenderScale,
		Version:     "1.0.0",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.ImportDir != "" {
		if expandedPath, err := filepath.Abs(cfg.ImportDir); err == nil {
			cfg.ImportDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("QUOTE_IMPORT")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.ImportDir)
	viper.SetDefault("presets", cfg.PresetDir)
	viper.SetDefault("db", cfg.Database)
	viper.SetDefault("renderscale", cfg.RenderScale)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP API, 'extract' for one-shot file extraction")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.ImportDir, "Directory uploaded documents are stored in")
	pflag.String("presets", cfg.PresetDir, "Directory of YAML preset overlay files (optional)")
	pflag.String("db", cfg.Database, "SQLite database path")
	pflag.Float64("renderscale", cfg.RenderScale, "Default pixels-per-point scale of the page renderer")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("presets", pflag.Lookup("presets"))
	_ = viper.BindPFlag("db", pflag.Lookup("db"))
	_ = viper.BindPFlag("renderscale", pflag.Lookup("renderscale"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nQuote Import - quotation document import service\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                      # HTTP API on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=extract 見積書.xlsx            # one-shot extraction to stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081           # API on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_DIR          Import directory\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_PRESETS      Preset overlay directory\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_DB           Database path\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_RENDERSCALE  Renderer scale\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  QUOTE_IMPORT_MAXFILESIZE  Maximum upload size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.ImportDir = viper.GetString("dir")
	cfg.PresetDir = viper.GetString("presets")
	cfg.Database = viper.GetString("db")
	cfg.RenderScale = viper.GetFloat64("renderscale")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeServer && c.Mode != ModeExtract {
		return errors.New("mode must be either 'server' or 'extract'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.ImportDir == "" {
		return errors.New("import directory cannot be empty")
	}

	// Check if import directory exists, create if it doesn't
	if _, err := os.Stat(c.ImportDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.ImportDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create import directory %s: %w", c.ImportDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access import directory %s: %w", c.ImportDir, err)
	}

	if c.Database == "" {
		return errors.New("database path cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.RenderScale <= 0 {
		return errors.New("render scale must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, ImportDir: %s, Database: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.ImportDir, c.Database, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if running the HTTP API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsExtractMode returns true if running a one-shot extraction
func (c *Config) IsExtractMode() bool {
	return c.Mode == ModeExtract
}
