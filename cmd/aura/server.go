package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/aura/internal/api"
	"github.com/kalambet/aura/internal/completion"
	"github.com/kalambet/aura/internal/config"
	"github.com/kalambet/aura/internal/observability"
	"github.com/kalambet/aura/internal/profile"
	"github.com/kalambet/aura/internal/router"
	"github.com/kalambet/aura/internal/session"
	"github.com/kalambet/aura/internal/storage"
)

const shutdownTimeout = 5 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the aura server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running aura server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show aura system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Serve Aura's tools over the Model Context Protocol on stdin/stdout.

Profiles recorded through MCP live in this process only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "aura.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// newAssistant wires the profile store, completion backend and router.
func newAssistant(ctx context.Context, cfg config.Config, metrics *observability.Metrics) (*router.Service, *profile.MemoryStore, error) {
	completer, err := completion.New(ctx, completion.Options{
		Provider:    cfg.Completion.Provider,
		APIKey:      cfg.Completion.APIKey(),
		Model:       cfg.Completion.Model,
		BaseURL:     cfg.Completion.BaseURL,
		Temperature: float32(cfg.Completion.Temperature),
		Timeout:     cfg.Completion.TimeoutDuration(),
		MaxAttempts: cfg.Completion.MaxAttempts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating completion client: %w", err)
	}

	profiles := profile.NewMemoryStore()
	svc := router.New(profiles, completer, router.Options{
		Provider: cfg.Completion.Provider,
		Metrics:  metrics,
	})
	return svc, profiles, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "aura version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := observability.SetupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	// Refuse to start twice on the same port.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(serverURL(cfg) + "/health"); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("aura is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("aura is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	var profiles *profile.MemoryStore
	metrics := observability.NewMetrics(func() int {
		if profiles == nil {
			return 0
		}
		return profiles.Count()
	})

	svc, profiles, err := newAssistant(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, cfg.Session.TTLDuration(), cfg.Persona.DefaultUser)

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewHandler(api.Deps{
			Assistant: svc,
			Sessions:  sessions,
			Metrics:   metrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("aura listening",
			"addr", srv.Addr,
			"provider", cfg.Completion.Provider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.RunJanitor(gctx, cfg.Session.PurgeIntervalDuration())
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr only.
	if err := observability.SetupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, _, err := newAssistant(ctx, cfg, nil)
	if err != nil {
		return err
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Assistant:   svc,
		DefaultUser: cfg.Persona.DefaultUser,
		Version:     version,
	})
	slog.Info("MCP server started (stdio transport)")

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func stopServer() error {
	cfg := config.Peek()

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("aura is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop aura (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to aura (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg := config.Peek()
	if err := cfg.Validate(); err != nil {
		printError("config error: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(serverURL(cfg) + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on %s", cfg.Server.Addr())
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	model := cfg.Completion.Model
	if model == "" {
		model = "(provider default)"
	}
	printStatus("Provider", "%s", cfg.Completion.Provider)
	printStatus("Model", "%s", model)
	switch {
	case cfg.Completion.Provider == config.ProviderOllama:
		o := completion.NewOllama(completion.OllamaConfig{
			BaseURL: cfg.Completion.BaseURL,
			Model:   cfg.Completion.Model,
		})
		switch ok, err := o.HasModel(ctx); {
		case err != nil:
			printStatus("Ollama", "not reachable")
		case ok:
			printStatus("Ollama", "running, model available")
		default:
			printStatus("Ollama", "running, model not pulled")
		}
	case cfg.Completion.APIKey() == "":
		printStatus("API key", "missing")
	default:
		printStatus("API key", "set")
	}

	if store, err := storage.Open(cfg.Storage.DataDir); err == nil {
		if n, err := store.CountSessions(ctx); err == nil {
			printStatus("Sessions", "%d", n)
		}
		store.Close()
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func serverURL(cfg config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}
