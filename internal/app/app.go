package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/cleanup"
	"github.com/codebuildervaibhav/asr-console/internal/config"
	"github.com/codebuildervaibhav/asr-console/internal/llm"
	"github.com/codebuildervaibhav/asr-console/internal/notify"
	"github.com/codebuildervaibhav/asr-console/internal/queue"
	"github.com/codebuildervaibhav/asr-console/internal/storage"
	"github.com/codebuildervaibhav/asr-console/internal/views"
	"github.com/codebuildervaibhav/asr-console/internal/watch"
)

// NotifierFunc returns the notifier a view reports through
type NotifierFunc func(view string) views.Notifier

// App holds the views and the infrastructure they share
type App struct {
	Config        *config.Config
	Client        *api.Client
	Notifications *notify.Center
	Prefs         *storage.PrefsDB
	Drive         *storage.DriveClient
	Exporter      *views.Exporter
	Verifier      *llm.Verifier

	Audio   *views.AudioManager
	Tasks   *views.TaskManager
	Summary *views.SummaryExport
	History *views.HistoryManager
	Models  *views.ModelManager

	Workers *queue.WorkerPool
	Cleanup *cleanup.Scheduler
	Watcher *watch.Watcher

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the application. notifier may be nil, in which case views
// publish to the shared notification center.
func New(ctx context.Context, cfg *config.Config, notifier NotifierFunc) (*App, error) {
	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	center := notify.NewCenter(cfg.NotificationTTL(), cfg.Notifications.Keep)
	if notifier == nil {
		notifier = func(view string) views.Notifier { return center.For(view) }
	}

	client := api.New(api.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.BackendTimeout(),
	})

	prefs, err := storage.NewPrefsDB(cfg.Storage.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		Config:        cfg,
		Client:        client,
		Notifications: center,
		Prefs:         prefs,
		Verifier:      llm.NewVerifier(&http.Client{}, cfg.BackendTimeout()),
	}

	sinks := []views.ArtifactSink{storage.NewLocalStorage(cfg.Storage.OutputDir)}

	// Google Drive mirror (optional - may fail if not authorized yet)
	if cfg.GoogleDrive.Enabled {
		drive, err := storage.NewDriveClient(ctx,
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Exports will only be saved locally")
		} else {
			log.Println("Google Drive integration enabled")
			a.Drive = drive
			sinks = append(sinks, drive)
		}
	}

	if cfg.Minio.Enabled {
		bucket, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			BucketName:      cfg.Minio.BucketName,
			Prefix:          cfg.Minio.Prefix,
		})
		if err != nil {
			log.Printf("WARNING: MinIO not available: %v", err)
		} else {
			log.Printf("MinIO mirror enabled (bucket %s)", cfg.Minio.BucketName)
			sinks = append(sinks, bucket)
		}
	}

	a.Exporter = views.NewExporter(client.Export, prefs, sinks...)

	a.Audio = views.NewAudioManager(client.Audio, notifier("audio"))
	a.Tasks = views.NewTaskManager(client.ASR, client.History, client.Audio, notifier("asr"), views.TaskOptions{
		Interval:       cfg.PollInterval(),
		StopOnTerminal: cfg.Poll.StopOnTerminal,
	})
	a.Summary = views.NewSummaryExport(client.ASR, client.Summary, a.Exporter, prefs, a.Verifier, notifier("summary"))
	a.History = views.NewHistoryManager(client.History, a.Exporter, notifier("history"))
	a.Models = views.NewModelManager(client.Models, notifier("model"))

	a.Workers = queue.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize, a.Audio)
	a.Cleanup = cleanup.NewScheduler(cfg.Storage.TempDir, cfg.Cleanup.IntervalMinutes, cfg.Cleanup.MaxAgeHours)
	if cfg.Watch.Dir != "" {
		a.Watcher = watch.New(cfg.Watch.Dir, cfg.Storage.TempDir, cfg.WatchSettle(), a.Workers)
	}

	return a, nil
}

// Start launches the background services: upload workers, staging cleanup
// and the watch folder
func (a *App) Start(ctx context.Context) error {
	a.Workers.Start()
	if err := a.Cleanup.Start(); err != nil {
		a.Workers.Stop()
		return fmt.Errorf("failed to start cleanup: %w", err)
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		if a.Watcher == nil {
			return
		}
		if err := a.Watcher.Run(ctx); err != nil {
			log.Printf("Watch folder stopped: %v", err)
		}
	}()
	return nil
}

// Close stops background services and releases the database
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
		<-a.done
		a.Cleanup.Stop()
		a.Workers.Stop()
	}
	return a.Prefs.Close()
}
