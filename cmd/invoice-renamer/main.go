package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mrhoge/invoice-renamer/internal/accounts"
	"github.com/mrhoge/invoice-renamer/internal/config"
	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/folder"
	"github.com/mrhoge/invoice-renamer/internal/logging"
	"github.com/mrhoge/invoice-renamer/internal/mcp"
	"github.com/mrhoge/invoice-renamer/internal/ocr"
	"github.com/mrhoge/invoice-renamer/internal/pdf"
	"github.com/mrhoge/invoice-renamer/internal/viewer"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// loggingOptions derives the logger setup from the configuration. Console
// output always goes to stderr so stdio mode keeps stdout for the protocol;
// --loglevel=debug lowers the console level.
func loggingOptions(cfg *config.Config) logging.Options {
	consoleLevel := cfg.Logging.ConsoleLevel
	if cfg.IsDebug() {
		consoleLevel = "DEBUG"
	}
	return logging.Options{
		ConsoleLevel: consoleLevel,
		FileLevel:    cfg.Logging.FileLevel,
		Directory:    cfg.Logging.Directory,
		Prefix:       cfg.Logging.Prefix,
		Format:       cfg.Logging.Format,
		Console:      os.Stderr,
	}
}

// checkHandler falls back to the default renderer for unknown names
func checkHandler(cfg *config.Config, logger logrus.FieldLogger) {
	if err := cfg.ValidateHandler(); err != nil {
		apperrors.Handle(logger, err, apperrors.KindConfigInvalidValue, cfg.PDF.Handler)
		cfg.PDF.Handler = config.DefaultHandler
	}
}

// defaultAccountsPath is the accounts CSV shipped next to the executable
func defaultAccountsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), accounts.DefaultFileName)
}

// newSession wires the viewer session from the configuration
func newSession(cfg *config.Config, logger logrus.FieldLogger) *viewer.Session {
	if err := os.MkdirAll(cfg.StateDirectory, config.DefaultDirPerm); err != nil {
		logger.WithError(err).WithField("dir", cfg.StateDirectory).Warn("Cannot create state directory")
	}

	titles := accounts.NewLoader(logger).Load(
		filepath.Join(cfg.StateDirectory, accounts.UserFileName),
		defaultAccountsPath(),
	)

	return viewer.New(viewer.Options{
		PDF: pdf.Options{
			MaxFileSize:  cfg.MaxFileSize,
			Handler:      cfg.PDF.Handler,
			PdftoppmPath: cfg.PDF.PdftoppmPath,
		},
		Language:     cfg.OCR.Language,
		Tolerance:    cfg.Tolerance(),
		MemoryLimit:  cfg.OCR.MemoryThreshold,
		Engine:       ocr.NewTesseract(cfg.OCR.TessdataPrefix),
		Store:        folder.NewStore(cfg.StateDirectory, logger),
		Accounts:     titles,
		PreviewCache: cfg.Cache.PreviewPages,
		Logger:       logger,
	})
}

// openStartFolder opens the configured folder when one was given, otherwise
// the folder of the previous session, otherwise the working directory
func openStartFolder(cfg *config.Config, session *viewer.Session, logger logrus.FieldLogger) {
	if !cfg.DirectorySet && session.Restore() {
		return
	}
	if _, err := session.OpenFolder(cfg.PDFDirectory); err != nil {
		logger.WithError(err).WithField("dir", cfg.PDFDirectory).Warn("Cannot open invoice folder")
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		if kind := apperrors.KindOf(err); kind != apperrors.KindUnknown {
			fmt.Fprintln(os.Stderr, apperrors.Describe(kind, ""))
		}
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(loggingOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.WithFields(logrus.Fields{
		"version": cfg.Version,
		"mode":    cfg.Mode,
		"log":     logger.FilePath,
	}).Info("Invoice renamer starting")
	logger.Debugf("Starting with configuration: %s", cfg.String())

	checkHandler(cfg, logger)

	session := newSession(cfg, logger)
	defer session.Close()
	openStartFolder(cfg, session, logger)

	server, err := mcp.NewServer(cfg, session, logger.Logger)
	if err != nil {
		logger.WithError(err).Error("Failed to create MCP server")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.WithError(err).Error("Server error")
		session.Close()
		logger.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Invoice Renamer\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
	fmt.Printf("Renderers: %s\n", strings.Join([]string{config.HandlerMuPDF, config.HandlerPdftoppm}, ", "))
}
