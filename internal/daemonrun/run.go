package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"packwright/internal/analysis"
	"packwright/internal/approval"
	"packwright/internal/archive"
	"packwright/internal/authoring"
	"packwright/internal/config"
	"packwright/internal/daemon"
	"packwright/internal/delivery"
	"packwright/internal/discovery"
	"packwright/internal/docstore"
	"packwright/internal/ipc"
	"packwright/internal/logging"
	"packwright/internal/notifications"
	"packwright/internal/organizer"
	"packwright/internal/preflight"
	"packwright/internal/research"
	"packwright/internal/run"
	"packwright/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the packwright daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.LogDir(), fmt.Sprintf("packwright-%s.log", runID))

	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.LogDir(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update packwright.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.LogDir(), Pattern: "packwright-*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: filepath.Join(cfg.LogDir(), "runs"), Pattern: "*.log"},
	)

	pidPath := filepath.Join(cfg.LogDir(), "packwright.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := run.Open(cfg)
	if err != nil {
		logger.Error("open run store", logging.Error(err))
		return err
	}
	defer store.Close()

	fsStore, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		logger.Error("open document store", logging.Error(err))
		return err
	}
	docs := docstore.WithRetries(fsStore, cfg.DocStore)
	gate := approval.NewGate(store)

	notifier := notifications.NewService(cfg)
	workflowManager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
	registerPhases(workflowManager, cfg, docs, gate, logger)

	d, err := daemon.New(cfg, store, docs, gate, logger, workflowManager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and run database access"),
			logging.String(logging.FieldImpact, "daemon may not process packaging runs"),
		)
	}

	<-signalCtx.Done()
	logger.Info("packwright daemon shutting down")
	return nil
}

func registerPhases(mgr *workflow.Manager, cfg *config.Config, docs docstore.Store, gate *approval.Gate, logger *slog.Logger) {
	if mgr == nil || cfg == nil {
		return
	}

	provider := research.NewProvider(cfg)
	mgr.ConfigurePhases(workflow.PhaseSet{
		Classifier: preflight.NewHandler(cfg, preflight.NewClassifier(docs, cfg.Layout), gate, logger),
		Archiver:   archive.NewHandler(archive.NewManager(docs, cfg.Layout), logger),
		Discoverer: discovery.NewHandler(discovery.NewDiscoverer(docs, cfg.Layout), logger),
		Analyzer:   analysis.NewHandler(cfg, analysis.NewRunner(cfg.Analysis, logger), provider, docs, gate, logger),
		Author:     authoring.NewHandler(docs, logger),
		Organizer:  organizer.NewHandler(organizer.New(docs, cfg.Layout, logger), logger),
		Deliverer:  delivery.NewHandler(docs, logger),
	})
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "packwright.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
