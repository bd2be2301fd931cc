package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"log/slog"

	"packwright/internal/api"
	"packwright/internal/daemon"
	"packwright/internal/logging"
	"packwright/internal/run"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Packwright", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun packwright stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.StoreRoot = status.StoreRoot
	resp.PID = os.Getpid()
	resp.RunStats = api.MergeRunStats(status.Workflow.RunStats)
	resp.LastError = status.Workflow.LastError
	if status.Workflow.LastRun != nil {
		last := api.FromRun(status.Workflow.LastRun)
		resp.LastRun = &last
	}
	resp.PhaseHealth = api.PhaseHealthSlice(status.Workflow.PhaseHealth)
	return nil
}

func (s *service) RunStart(req RunStartRequest, resp *RunStartResponse) error {
	folder := strings.TrimSpace(req.Folder)
	s.log().Debug("run start requested", logging.String(logging.FieldFolder, folder))
	r, err := s.daemon.StartRun(s.ctx, folder)
	if err != nil {
		return err
	}
	resp.Run = api.FromRun(r)
	return nil
}

func (s *service) RunList(req RunListRequest, resp *RunListResponse) error {
	statuses := make([]run.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := run.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	runs, err := s.daemon.ListRuns(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Runs = api.FromRuns(runs)
	return nil
}

func (s *service) RunDescribe(req RunDescribeRequest, resp *RunDescribeResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("run describe requires an id")
	}
	r, err := s.daemon.GetRun(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Run = api.FromRun(r)
	return nil
}

func (s *service) RunDecide(req RunDecideRequest, resp *RunDecideResponse) error {
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.OptionID) == "" {
		return errors.New("run decide requires an id and an option id")
	}
	r, err := s.daemon.Decide(s.ctx, req.ID, req.OptionID)
	if err != nil {
		return err
	}
	resp.Run = api.FromRun(r)
	return nil
}

func (s *service) RunCancel(req RunCancelRequest, resp *RunCancelResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("run cancel requires an id")
	}
	r, err := s.daemon.CancelRun(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Run = api.FromRun(r)
	return nil
}

func (s *service) RunClearCompleted(_ RunClearCompletedRequest, resp *RunClearCompletedResponse) error {
	removed, err := s.daemon.ClearCompleted(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("completed runs cleared",
		logging.String(logging.FieldEventType, "run_clear_completed"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) RunClearFailed(_ RunClearFailedRequest, resp *RunClearFailedResponse) error {
	removed, err := s.daemon.ClearFailed(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("failed runs cleared",
		logging.String(logging.FieldEventType, "run_clear_failed"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) RunReset(_ RunResetRequest, resp *RunResetResponse) error {
	updated, err := s.daemon.ResetStuck(s.ctx)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("stuck runs reset",
		logging.String(logging.FieldEventType, "run_reset_stuck"),
		logging.Int64("updated_count", updated))
	return nil
}

func (s *service) RunRetry(req RunRetryRequest, resp *RunRetryResponse) error {
	s.log().Debug("run retry requested", logging.Int("run_count", len(req.IDs)))
	updated, err := s.daemon.RetryFailed(s.ctx, req.IDs)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("failed runs retried",
		logging.String(logging.FieldEventType, "run_retry"),
		logging.Int64("updated_count", updated))
	return nil
}

func (s *service) RunHealth(_ RunHealthRequest, resp *RunHealthResponse) error {
	health, err := s.daemon.RunHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Active = health.Active
	resp.Suspended = health.Suspended
	resp.Failed = health.Failed
	resp.Completed = health.Completed
	resp.Cancelled = health.Cancelled
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TableExists = health.TableExists
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalRuns = health.TotalRuns
	resp.Error = health.Error
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = req.Offset
		return nil
	}
	lines, offset, err := tailLines(logPath, req.Offset, req.Limit)
	if err != nil {
		if os.IsNotExist(err) {
			resp.Offset = req.Offset
			return nil
		}
		return err
	}
	resp.Lines = lines
	resp.Offset = offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
