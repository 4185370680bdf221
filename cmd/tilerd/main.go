// Command tilerd runs the tile engine as a daemon: it reads Requests as
// newline-delimited JSON from its transport and writes Events the same way,
// serializing every command through a single Worker goroutine.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pop-os/tiler/config"
	"github.com/pop-os/tiler/internal/logging"
	"github.com/pop-os/tiler/ipc"
	"github.com/pop-os/tiler/server"
)

var (
	flagConfigLevel  string
	flagConfigFormat string
	flagTransport    string
	flagSocketPath   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tilerd",
		Short: "Headless tiling window manager engine",
		Long: "tilerd is the computational core of a tiling window manager: " +
			"it tracks the tile tree, stacking, and workspace/display topology " +
			"and speaks a line-oriented JSON protocol over stdio or a Unix socket.",
		RunE: runDaemon,
	}

	root.Flags().StringVar(&flagConfigLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	root.Flags().StringVar(&flagConfigFormat, "log-format", "", "override the configured log format (console, json)")
	root.Flags().StringVar(&flagTransport, "transport", "", "override the configured transport (stdio, unix)")
	root.Flags().StringVar(&flagSocketPath, "socket", "", "override the configured Unix socket path")

	return root
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	bootstrapLog := logging.New(logging.Config{Level: "info", Format: "console"})

	cfg, err := config.Load(&bootstrapLog)
	if err != nil {
		return fmt.Errorf("tilerd: load config: %w", err)
	}
	applyFlagOverrides(cfg)

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := logging.WithContext(cmd.Context(), log)

	watcher, err := config.NewWatcher(&log)
	if err != nil {
		log.Warn().Err(err).Msg("tilerd: config hot-reload disabled")
	} else {
		defer watcher.Close()
		watcher.OnChange(func(updated *config.Config) {
			log.Info().Str("log_level", updated.LogLevel).Msg("tilerd: config changed")
		})
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := server.NewWorker(&log)

	dec, enc, closeTransport, err := openTransport(cfg, &log)
	if err != nil {
		return fmt.Errorf("tilerd: open transport: %w", err)
	}
	defer closeTransport()

	log.Info().Str("transport", cfg.Transport).Msg("tilerd: serving")
	return server.Serve(ctx, w, dec, enc)
}

func applyFlagOverrides(cfg *config.Config) {
	if flagConfigLevel != "" {
		cfg.LogLevel = flagConfigLevel
	}
	if flagConfigFormat != "" {
		cfg.LogFormat = flagConfigFormat
	}
	if flagTransport != "" {
		cfg.Transport = flagTransport
	}
	if flagSocketPath != "" {
		cfg.SocketPath = flagSocketPath
	}
}

// openTransport opens the configured transport and returns its decoder,
// encoder, and a close func. "stdio" reads/writes the process's own
// stdin/stdout; "unix" listens on SocketPath, accepts a single connection
// and serves only that one; no further connections are accepted.
func openTransport(cfg *config.Config, log *zerolog.Logger) (*ipc.Decoder, *ipc.Encoder, func(), error) {
	switch cfg.Transport {
	case "", "stdio":
		return ipc.NewDecoder(os.Stdin, log), ipc.NewEncoder(os.Stdout), func() {}, nil
	case "unix":
		if cfg.SocketPath == "" {
			return nil, nil, nil, fmt.Errorf("unix transport requires a socket path")
		}
		_ = os.Remove(cfg.SocketPath)
		ln, err := net.Listen("unix", cfg.SocketPath)
		if err != nil {
			return nil, nil, nil, err
		}
		conn, err := ln.Accept()
		if err != nil {
			ln.Close()
			return nil, nil, nil, err
		}
		closeFn := func() {
			conn.Close()
			ln.Close()
			os.Remove(cfg.SocketPath)
		}
		return ipc.NewDecoder(conn, log), ipc.NewEncoder(conn), closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
