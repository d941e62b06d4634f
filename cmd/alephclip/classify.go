package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/alephclip/internal/clip"
	"go.klb.dev/alephclip/internal/status"
	"go.klb.dev/alephclip/internal/transcode"
)

func newClassifyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Run the conversion on some text without touching the clipboard",
		Long: `Classifies text the way the daemon would and prints the resulting status
line and the republished text.

Input comes from the argument if given, otherwise from the current clipboard
with --clipboard, otherwise from stdin. With --raw only the bytes that would
be published are written, with nothing printed for text that is not an
ALEPH export.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			text, ok, err := classifyInput(cmd.InOrStdin(), args, v.GetBool("clipboard"))
			if err != nil {
				return err
			}
			_, err = classifyText(cmd.OutOrStdout(), text, ok, v.GetBool("raw"))
			return err
		},
	}

	f := cmd.Flags()
	f.Bool("clipboard", false, "read the text from the current clipboard")
	f.Bool("raw", false, "write only the payload that would be published")
	addConfigFlag(cmd)

	return cmd
}

func classifyInput(stdin io.Reader, args []string, fromClipboard bool) (string, bool, error) {
	switch {
	case len(args) == 1:
		return args[0], true, nil
	case fromClipboard:
		return clip.ReadSystemText()
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", false, fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), len(b) > 0, nil
}

// classifyText runs the transcoder against an in-memory clipboard holding
// text and reports what it would have published.
func classifyText(out io.Writer, text string, ok, raw bool) (status.Report, error) {
	board := clip.NewMemory()
	if ok {
		board.SetText(text)
	}
	rep := transcode.New(board).Process()

	if !raw {
		status.NewConsole(out).Show(rep)
		return rep, nil
	}
	if rep.Outcome != status.Success {
		return rep, nil
	}
	payload, _ := board.Published(rep.Format)
	if _, err := out.Write(payload); err != nil {
		return rep, fmt.Errorf("writing payload: %w", err)
	}
	return rep, nil
}
