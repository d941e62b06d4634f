package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/alephclip/internal/clip"
	"go.klb.dev/alephclip/internal/ipc"
	"go.klb.dev/alephclip/internal/status"
	"go.klb.dev/alephclip/internal/transcode"
	"go.klb.dev/alephclip/internal/winhost"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the clipboard and republish ALEPH exports",
		Long: `Joins the clipboard viewer chain with a hidden window and processes every
clipboard change until interrupted or until the session ends.

Each change produces one status line ("HH:MM:SS - OK" and friends). The
latest one is kept in memory and served to "alephclip status" over the local
IPC endpoint. Unexpected faults raise a message box unless --notify=false.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.Bool("console", false, "print every outcome and the republished text to stdout")
	f.Bool("no-ipc", false, "do not serve status queries on the local IPC endpoint")
	f.Bool("notify", true, "show a message box on unexpected faults")
	f.Bool("single-instance", true, "refuse to start while another instance is running")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	closer, err := setupLogging(v)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	latest := &status.Latest{}
	displays := status.Multi{status.NewLogger(nil), latest}
	if v.GetBool("console") {
		displays = append(displays, status.NewConsole(os.Stdout))
	}

	var notice status.Notifier = status.LogNotifier{}
	if v.GetBool("notify") {
		notice = winhost.NewNotifier(appTitle)
	}

	srv := newStatusServer(latest, defaultSource(), time.Now())
	if !v.GetBool("no-ipc") {
		ln, err := ipc.Listen()
		if err != nil {
			slog.Warn("IPC endpoint unavailable; status queries disabled", "err", err)
		} else {
			slog.Info("IPC endpoint listening", "path", ipc.SocketPath())
			go srv.serve(ln)
			defer ln.Close()
		}
	}

	mutex := ""
	if v.GetBool("single-instance") {
		mutex = winhost.DefaultMutexName
	}

	slog.Info("alephclip starting", "version", Version, "source", srv.source)
	err = winhost.Run(ctx, winhost.Config{
		Title:     appTitle,
		MutexName: mutex,
		NewHook: func(owner uintptr) (func(), error) {
			board, err := clip.New(owner)
			if err != nil {
				return nil, err
			}
			srv.setBackend(board.Name())
			tr := transcode.New(board, transcode.WithNotifier(notice))
			return func() { displays.Show(tr.Process()) }, nil
		},
	})
	switch {
	case errors.Is(err, winhost.ErrAlreadyRunning):
		return fmt.Errorf("alephclip: %w", err)
	case err != nil:
		return fmt.Errorf("clipboard host: %w", err)
	}
	slog.Info("alephclip stopped")
	return nil
}
