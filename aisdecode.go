package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aisdecode",
	Short: "Decode AIS !AIVDM/!AIVDO sentences",
	Long: `aisdecode decodes AIS radio traffic.

Commands:
  serve   - receive sentences over UDP or serial and publish decoded records
  decode  - decode sentences from files or stdin to JSON lines

Examples:
  aisdecode serve --config settings.json
  aisdecode decode capture.nmea
  nc -lu 8101 | aisdecode decode`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDecodeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
