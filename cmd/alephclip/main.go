// alephclip: republish ALEPH clipboard exports under their own formats.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/alephclip/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

const appTitle = "ALEPH Clipboard"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alephclip",
		Short: "Republish ALEPH clipboard exports under ALEPH_DOC / ALEPH_TAG",
		Long: `alephclip joins the Windows clipboard viewer chain and watches for text
exported from ALEPH. Document exports (starting with "FMT   L") and tag
exports (starting with "008   L") are normalized to CRLF line endings and
published alongside the plain text under the registered clipboard formats
ALEPH_DOC and ALEPH_TAG.

Run "alephclip run" to start watching. Use "alephclip status" to see the last
outcome and "alephclip classify" to try the conversion without touching the
clipboard.

Config file search order (first found wins):
  /etc/alephclip/alephclip.toml
  $HOME/.config/alephclip/alephclip.toml
  <user config dir>/alephclip/alephclip.toml
  path supplied via --config

All flags can be set via ALEPHCLIP_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newClassifyCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "alephclip %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr, path string) (io.Closer, error) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	return logging.Setup(format, level, path)
}
