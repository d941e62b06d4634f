package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/alephclip/internal/ipc"
	"go.klb.dev/alephclip/internal/message"
	"go.klb.dev/alephclip/internal/status"
	"go.klb.dev/alephclip/internal/wire"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the last clipboard change",
		Long: `Asks the running "alephclip run" daemon over the local IPC endpoint for
its most recent status line and prints it.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd.OutOrStdout(), v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(out io.Writer, v *viper.Viper) error {
	conn, err := ipc.Dial()
	if err != nil {
		return fmt.Errorf("no daemon running at %s: %w", ipc.SocketPath(), err)
	}
	wc := wire.New(conn)
	defer wc.Close()

	resp, err := queryStatus(wc)
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(out, string(enc))
		return nil
	}
	printStatus(out, resp)
	return nil
}

func queryStatus(wc *wire.Conn) (*message.Message, error) {
	if err := wc.WriteMsg(&message.Message{Type: message.TypeStatus}); err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	wc.SetReadDeadline(ipcReadTimeout)
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("status response: %w", err)
	}
	switch resp.Type {
	case message.TypeStatusResponse:
		return resp, nil
	case message.TypeError:
		return nil, fmt.Errorf("daemon: %s", resp.Error)
	default:
		return nil, fmt.Errorf("unexpected response type %q", resp.Type)
	}
}

func printStatus(out io.Writer, resp *message.Message) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Source:\t%s\n", resp.Source)
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	if resp.Backend != "" {
		fmt.Fprintf(w, "Clipboard:\t%s\n", resp.Backend)
	}
	if !resp.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", resp.StartedAt.UTC().Format(time.RFC3339), fmtAge(resp.StartedAt))
	}
	fmt.Fprintf(w, "Changes seen:\t%d\n", resp.Reports)
	fmt.Fprintln(w)
	_ = w.Flush()

	if resp.Latest == nil {
		fmt.Fprintln(out, "No clipboard changes yet.")
		return
	}
	status.NewConsole(out).Show(reportFromInfo(resp.Latest))
}

// reportFromInfo rebuilds a report from its wire form so the console
// renders it the same way the daemon would.
func reportFromInfo(info *message.ReportInfo) status.Report {
	r := status.Report{
		At:      info.At,
		Outcome: status.Outcome(info.Outcome),
		Format:  info.Format,
		Text:    info.Text,
	}
	if info.Error != "" {
		r.Err = errors.New(info.Error)
	}
	return r
}
