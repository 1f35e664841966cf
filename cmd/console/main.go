package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/codebuildervaibhav/asr-console/internal/app"
	"github.com/codebuildervaibhav/asr-console/internal/config"
	"github.com/codebuildervaibhav/asr-console/internal/handlers"
	"github.com/codebuildervaibhav/asr-console/internal/version"
	"github.com/codebuildervaibhav/asr-console/internal/web"
)

// backendPrefixes are forwarded to the backend when the proxy is enabled
var backendPrefixes = []string{"/api", "/audio", "/asr", "/history", "/model", "/export", "/summary"}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize components
	log.Println("Initializing components...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize console: %v", err)
	}
	defer application.Close()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start background services: %v", err)
	}
	if application.Watcher != nil {
		log.Printf("Watching %s for new audio", cfg.Watch.Dir)
	}

	// Create Fiber app
	srv := fiber.New(fiber.Config{
		BodyLimit:    cfg.Limits.MaxFileSizeMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	srv.Use(recover.New())
	srv.Use(logger.New())
	srv.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Only the authorized Drive client may be handed to the import handler
	var drive handlers.DriveDownloader
	if application.Drive != nil {
		drive = application.Drive
	}

	// Routes
	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": version.Version,
			"backend": cfg.Backend.BaseURL,
		})
	})

	handlers.Register(srv.Group("/ui"), &handlers.Set{
		Audio:         handlers.NewAudioHandler(application.Audio, cfg.Limits.MaxFileSizeMB),
		Tasks:         handlers.NewTasksHandler(application.Tasks),
		Stream:        handlers.NewStreamHandler(application.Tasks),
		Summary:       handlers.NewSummaryHandler(application.Summary),
		History:       handlers.NewHistoryHandler(application.History, application.Prefs),
		Models:        handlers.NewModelsHandler(application.Models),
		Notifications: handlers.NewNotificationsHandler(application.Notifications),
		NotifyStream:  handlers.NewNotificationStream(application.Notifications),
		Imports: handlers.NewImportHandler(
			application.Workers,
			cfg.Storage.TempDir,
			cfg.Limits.MaxFileSizeMB,
			drive,
			&http.Client{Timeout: 10 * time.Minute},
		),
	})

	// Get server logs
	srv.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	if cfg.Proxy.Enabled {
		backend := strings.TrimRight(cfg.Backend.BaseURL, "/")
		for _, prefix := range backendPrefixes {
			srv.All(prefix+"/*", func(c *fiber.Ctx) error {
				return proxy.Do(c, backend+c.OriginalURL())
			})
		}
		log.Printf("Proxying %s to %s", strings.Join(backendPrefixes, " "), backend)
	}

	srv.Use("/", web.Handler())

	// Start server
	addr := cfg.Addr()
	log.Printf("🚀 Console starting on %s (backend %s)", addr, cfg.Backend.BaseURL)
	log.Println("📝 Endpoints:")
	log.Println("   GET  /                 - Console")
	log.Println("   GET  /ui/audio         - Audio files")
	log.Println("   GET  /ui/tasks         - ASR tasks")
	log.Println("   GET  /ui/tasks/stream  - WebSocket task progress")
	log.Println("   GET  /ui/summary       - Summary and export")
	log.Println("   GET  /ui/history       - Task and result history")
	log.Println("   GET  /ui/models        - Models")
	log.Println("   POST /ui/imports/gdrive - Import a Google Drive file")
	log.Println("   GET  /logs             - View server logs")
	log.Println("   GET  /health           - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		cancel()
		srv.Shutdown()
	}()

	if err := srv.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}
