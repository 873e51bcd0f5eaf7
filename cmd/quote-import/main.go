package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kanewa-tools/quote-import/internal/config"
	"github.com/kanewa-tools/quote-import/internal/pdftext"
	"github.com/kanewa-tools/quote-import/internal/preset"
	"github.com/kanewa-tools/quote-import/internal/server"
	"github.com/kanewa-tools/quote-import/internal/spreadsheet"
	"github.com/kanewa-tools/quote-import/internal/store"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	if cfg.IsExtractMode() {
		// In extract mode, results go to stdout; keep logs on stderr
		log.SetOutput(os.Stderr)
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, srv *server.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runExtractMode extracts each file named on the command line and prints
// the result as JSON to stdout, one document per line argument.
func runExtractMode(cfg *config.Config, registry *preset.Registry, paths []string) {
	if len(paths) == 0 {
		log.Fatal("extract mode requires at least one file argument")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, path := range paths {
		result, err := extractFile(cfg, registry, path)
		if err != nil {
			log.Fatalf("Failed to extract %s: %v", path, err)
		}
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to encode result for %s: %v", path, err)
		}
	}
}

// extractFile runs the automatic pipeline on one file without a server.
func extractFile(cfg *config.Config, registry *preset.Registry, path string) (any, error) {
	if isPDF(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > cfg.MaxFileSize {
			return nil, fmt.Errorf("file exceeds maximum size of %d bytes", cfg.MaxFileSize)
		}
		doc, err := pdftext.Load(data)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"file":  path,
			"kind":  "pdf",
			"lines": doc.Lines(),
			"items": pdftext.GuessLineItems(doc.Lines()),
		}, nil
	}

	wb, err := spreadsheet.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	p := preset.Detect(registry, wb)
	extracted := spreadsheet.NewEngine(wb, p).Extract()
	return map[string]any{
		"file":      path,
		"kind":      "xlsx",
		"preset_id": p.ID,
		"extracted": extracted,
	}, nil
}

func isPDF(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".pdf"
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	// Build the preset registry, with YAML overlays when configured
	registry := preset.NewRegistry()
	if cfg.PresetDir != "" {
		if err := registry.LoadOverlays(cfg.PresetDir); err != nil {
			log.Fatalf("Failed to load preset overlays: %v", err)
		}
	}

	if cfg.IsExtractMode() {
		runExtractMode(cfg, registry, pflag.Args())
		return
	}

	// Open the case database
	st, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	srv := server.New(cfg, registry, st)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runServerMode(ctx, cancel, srv)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Quote Import\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
