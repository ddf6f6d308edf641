package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/skein/internal/output"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print level, file and packet statistics for the logs directory",
	Long: `Build the summary of the logs directory: entry counts per level and
file, the covered time range and per-packet durations.

Examples:
  skein summary
  skein summary --duration-mode span --output json`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().String("duration-mode", "flags", "packet duration mode: flags (start/end markers) or span (first to last entry)")
	_ = viper.BindPFlag("summary.duration_mode", summaryCmd.Flags().Lookup("duration-mode"))
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	resp, err := e.svc.Summary(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput() {
		return output.WriteJSON(stdout, resp)
	}
	return output.WriteSummary(stdout, resp, output.ColorEnabled(colorMode, stdout))
}
