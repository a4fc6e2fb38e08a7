package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-ocr-mcp/internal/config"
	"github.com/ironsheep/scan-ocr-mcp/internal/ocr"
	"github.com/ironsheep/scan-ocr-mcp/internal/pipeline"
	"github.com/ironsheep/scan-ocr-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scan-ocr-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("scan-ocr-mcp - MCP server for document image preprocessing and OCR")
			fmt.Println()
			fmt.Println("Usage: scan-ocr-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  SCAN_OCR_LOG_LEVEL=debug        Log level (default info)")
			fmt.Println("  SCAN_OCR_ENGINE=tesseract       Recognition engine: tesseract or openai")
			fmt.Println("  SCAN_OCR_LANG=eng               Default recognition language")
			fmt.Println("  SCAN_OCR_CONTRAST=70            Contrast amount, -255 to 255")
			fmt.Println("  SCAN_OCR_MAX_DIMENSION=1600     Longest side after preprocessing")
			fmt.Println("  SCAN_OCR_JPEG_QUALITY=92        JPEG quality of preprocessed images")
			fmt.Println("  SCAN_OCR_DECODE_TIMEOUT=30s     Bound on a single image decode")
			fmt.Println("  SCAN_OCR_MAX_PIXELS=100000000   Largest width*height accepted for decoding")
			fmt.Println("  SCAN_OCR_RASTER=true            Set false to disable preprocessing")
			fmt.Println("  TESSDATA_PREFIX=                Tesseract language data directory")
			fmt.Println("  OPENAI_API_KEY=                 API key for the openai engine")
			fmt.Println("  OPENAI_API_ENDPOINT=            Override the OpenAI base URL")
			fmt.Println("  OPENAI_MODEL=gpt-4o-mini        Vision model for the openai engine")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	log := logger.WithField("component", "scan-ocr-mcp")
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"engine":  cfg.Engine,
		"raster":  cfg.Raster,
	}).Debug("Starting server")

	adapter := ocr.NewAdapter(newLoader(cfg), logger.WithField("component", "ocr"))

	p := pipeline.New(adapter,
		pipeline.WithCapabilities(pipeline.PlatformCapabilities{Raster: cfg.Raster}),
		pipeline.WithDecodeTimeout(cfg.DecodeTimeout),
		pipeline.WithMaxPixels(cfg.MaxPixels),
		pipeline.WithDefaults(pipeline.PreprocessOptions{
			Contrast:     cfg.Contrast,
			MaxDimension: cfg.MaxDimension,
			Quality:      cfg.JPEGQuality,
		}),
		pipeline.WithLogger(logger.WithField("component", "pipeline")),
	)

	srv := server.New(p, adapter,
		server.WithLanguage(cfg.Language),
		server.WithVersion(Version),
		server.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("Server error")
	}
}

func newLoader(cfg config.Config) ocr.Loader {
	if cfg.Engine == config.EngineOpenAI {
		return ocr.NewOpenAILoader(ocr.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIEndpoint,
			Model:   cfg.OpenAIModel,
		})
	}
	return ocr.NewTesseractLoader(cfg.TessdataPrefix)
}
