package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Renderer backends
	HandlerMuPDF    = "mupdf"
	HandlerPdftoppm = "pdftoppm"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultConfigName      = "config"
	DefaultConsoleLevel    = "INFO"
	DefaultFileLevel       = "DEBUG"
	DefaultLogDirectory    = "logs"
	DefaultLogPrefix       = "invoice_renamer_"
	DefaultLogFormat       = "text"
	DefaultHandler         = HandlerMuPDF
	DefaultPdftoppmPath    = "pdftoppm"
	DefaultOCRLanguage     = "jpn+eng"
	DefaultYTolerance      = 2.0
	DefaultPreviewCache    = 16
	DefaultMemoryThreshold = 85.0

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "INVOICE_RENAMER"
)

// Config holds all configuration for the invoice renamer
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Folder of invoices opened at startup
	PDFDirectory string

	// DirectorySet is true when the folder came from a flag, the environment
	// or config.toml rather than the working directory default
	DirectorySet bool

	// Directory for persisted state (last folder, accounts.csv)
	StateDirectory string

	// Config file explicitly requested with --config
	ConfigFile string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	Logging LoggingConfig
	PDF     PDFConfig
	OCR     OCRConfig
	Cache   CacheConfig
}

// LoggingConfig mirrors the [logging] table of config.toml
type LoggingConfig struct {
	ConsoleLevel string
	FileLevel    string
	Directory    string
	Prefix       string
	Format       string // "text" or "json"
}

// PDFConfig mirrors the [pdf] table of config.toml
type PDFConfig struct {
	Handler      string
	PdftoppmPath string
}

// OCRConfig mirrors the [ocr] table of config.toml
type OCRConfig struct {
	Language        string
	YTolerance      float64
	TessdataPrefix  string
	MemoryThreshold float64 // percent of system memory above which quick mode is forced
}

// CacheConfig mirrors the [cache] table of config.toml
type CacheConfig struct {
	PreviewPages int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	stateDir := filepath.Join(currentDir, ".invoice-renamer")
	if userDir, err := os.UserConfigDir(); err == nil {
		stateDir = filepath.Join(userDir, "invoice-renamer")
	}

	return &Config{
		Mode:           ModeStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		PDFDirectory:   currentDir,
		StateDirectory: stateDir,
		Version:        "1.0.0",
		ServerName:     "invoice-renamer",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
		Logging: LoggingConfig{
			ConsoleLevel: DefaultConsoleLevel,
			FileLevel:    DefaultFileLevel,
			Directory:    DefaultLogDirectory,
			Prefix:       DefaultLogPrefix,
			Format:       DefaultLogFormat,
		},
		PDF: PDFConfig{
			Handler:      DefaultHandler,
			PdftoppmPath: DefaultPdftoppmPath,
		},
		OCR: OCRConfig{
			Language:        DefaultOCRLanguage,
			YTolerance:      DefaultYTolerance,
			MemoryThreshold: DefaultMemoryThreshold,
		},
		Cache: CacheConfig{
			PreviewPages: DefaultPreviewCache,
		},
	}
}

// LoadFromFlags parses command line flags, the environment and config.toml
// and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	if err := readConfigFile(viper.GetString("config")); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("statedir", cfg.StateDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("config", "")

	viper.SetDefault("logging.handlers.console.level", cfg.Logging.ConsoleLevel)
	viper.SetDefault("logging.handlers.file.level", cfg.Logging.FileLevel)
	viper.SetDefault("logging.file.directory", cfg.Logging.Directory)
	viper.SetDefault("logging.file.prefix", cfg.Logging.Prefix)
	viper.SetDefault("logging.format", cfg.Logging.Format)
	viper.SetDefault("pdf.handler", cfg.PDF.Handler)
	viper.SetDefault("pdf.pdftoppm_path", cfg.PDF.PdftoppmPath)
	viper.SetDefault("ocr.language", cfg.OCR.Language)
	viper.SetDefault("ocr.y_coordinate_tolerance", cfg.OCR.YTolerance)
	viper.SetDefault("ocr.tessdata_prefix", cfg.OCR.TessdataPrefix)
	viper.SetDefault("ocr.memory_threshold", cfg.OCR.MemoryThreshold)
	viper.SetDefault("cache.preview_pages", cfg.Cache.PreviewPages)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for streamable HTTP")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Folder containing invoice PDFs")
	pflag.String("statedir", cfg.StateDirectory, "Directory for the last-folder state and accounts.csv")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("config", "", "Path to config.toml (default: ./config.toml when present)")
	pflag.String("handler", cfg.PDF.Handler, "PDF renderer: 'mupdf' or 'pdftoppm'")
	pflag.String("ocr-language", cfg.OCR.Language, "OCR language: jpn+eng, jpn, eng or auto")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("statedir", pflag.Lookup("statedir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("config", pflag.Lookup("config"))
	_ = viper.BindPFlag("pdf.handler", pflag.Lookup("handler"))
	_ = viper.BindPFlag("ocr.language", pflag.Lookup("ocr-language"))
}

// readConfigFile merges config.toml into viper. A missing default config
// file is not an error; an explicit --config that cannot be read, or any
// malformed file, is reported as CONFIG_FILE_ERROR.
func readConfigFile(path string) error {
	viper.SetConfigType("toml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(DefaultConfigName)
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && stderrors.As(err, &notFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.KindConfigFile, "read config", err).WithFile(path)
	}
	return nil
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nInvoice Renamer - an MCP server for reading invoice PDFs and renaming them from selected regions\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/invoices                  "+
			"# stdio mode with an invoice folder\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/invoices    # streamable HTTP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --handler=pdftoppm --ocr-language=jpn     # poppler renderer, Japanese OCR\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_MODE            Server mode\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_DIR             Invoice folder\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_PDF_HANDLER     PDF renderer\n")
		fmt.Fprintf(os.Stderr, "  INVOICE_RENAMER_OCR_LANGUAGE    OCR language\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.DirectorySet = directoryGiven()
	cfg.StateDirectory = viper.GetString("statedir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.ConfigFile = viper.ConfigFileUsed()

	cfg.Logging.ConsoleLevel = viper.GetString("logging.handlers.console.level")
	cfg.Logging.FileLevel = viper.GetString("logging.handlers.file.level")
	cfg.Logging.Directory = viper.GetString("logging.file.directory")
	cfg.Logging.Prefix = viper.GetString("logging.file.prefix")
	cfg.Logging.Format = viper.GetString("logging.format")

	cfg.PDF.Handler = NormalizeHandler(viper.GetString("pdf.handler"))
	cfg.PDF.PdftoppmPath = viper.GetString("pdf.pdftoppm_path")

	cfg.OCR.Language = viper.GetString("ocr.language")
	cfg.OCR.YTolerance = viper.GetFloat64("ocr.y_coordinate_tolerance")
	cfg.OCR.TessdataPrefix = viper.GetString("ocr.tessdata_prefix")
	cfg.OCR.MemoryThreshold = viper.GetFloat64("ocr.memory_threshold")

	cfg.Cache.PreviewPages = viper.GetInt("cache.preview_pages")
}

// directoryGiven reports whether dir was set anywhere but the defaults
func directoryGiven() bool {
	if f := pflag.Lookup("dir"); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv(envPrefix + "_DIR"); ok {
		return true
	}
	return viper.InConfig("dir")
}

// NormalizeHandler maps renderer aliases onto the canonical handler names.
// Unknown names are returned lower-cased so Validate can reject them.
func NormalizeHandler(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HandlerMuPDF, "pymupdf", "fitz":
		return HandlerMuPDF
	case HandlerPdftoppm, "pdf2image", "poppler":
		return HandlerPdftoppm
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// Tolerance returns the reading-order y tolerance, falling back to the
// default for non-positive values
func (c *Config) Tolerance() float64 {
	if c.OCR.YTolerance <= 0 {
		return DefaultYTolerance
	}
	return c.OCR.YTolerance
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return invalid("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return invalid("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return invalid("PDF directory cannot be empty")
	}

	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return invalid("maximum file size must be positive")
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

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if c.OCR.MemoryThreshold <= 0 || c.OCR.MemoryThreshold > 100 {
		return invalid("memory threshold must be within (0, 100]")
	}

	if c.Cache.PreviewPages < 0 {
		return invalid("preview cache size cannot be negative")
	}

	return nil
}

// ValidateHandler reports an unknown renderer as CONFIG_INVALID_VALUE.
// Callers log the error and continue with the default renderer.
func (c *Config) ValidateHandler() error {
	switch c.PDF.Handler {
	case HandlerMuPDF, HandlerPdftoppm:
		return nil
	default:
		return apperrors.New(apperrors.KindConfigInvalidValue,
			fmt.Sprintf("unknown pdf handler %q", c.PDF.Handler)).
			WithContext("using " + DefaultHandler)
	}
}

func invalid(msg string) error {
	return apperrors.New(apperrors.KindConfigInvalidValue, msg)
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
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Handler: %s, OCRLanguage: %s, YTolerance: %.1f}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.PDF.Handler, c.OCR.Language, c.OCR.YTolerance)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
