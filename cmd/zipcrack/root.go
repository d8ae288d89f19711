package zipcrack

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/redactyl/zipcrack/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagNoColor  bool
	flagLogLevel string
	flagLogJSON  bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the zipcrack CLI. Run without a
// subcommand it performs the password search.
var rootCmd = &cobra.Command{
	Use:   "zipcrack [archive]",
	Short: "Recover short numeric passwords of encrypted archives",
	Long: "zipcrack tries every candidate over an alphabet (digits by default) of increasing length " +
		"until the archive decrypts, then extracts it.",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runCrack,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the zipcrack CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./.zipcrack.yml, then $XDG_CONFIG_HOME/zipcrack/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", logging.DefaultOptions().Level, "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the zipcrack version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "zipcrack", version)
		},
	})
}
