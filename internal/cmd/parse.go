package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/skein/internal/output"
	"github.com/atikulmunna/skein/internal/palette"
)

var (
	levelFilter  string
	fileFilter   string
	packetFilter string
	searchFilter string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the logs directory and print the merged timeline",
	Long: `Parse every log file in the logs directory, merge the entries into one
timestamp-ordered timeline and annotate packets using the stored settings.
Filters only hide entries from the output.

Examples:
  skein parse --logs-dir ./logs
  skein parse --level error,warn --packet job-42
  skein parse --search timeout --output json`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	f := parseCmd.Flags()
	f.StringVarP(&levelFilter, "level", "l", "", "filter by level (comma-separated: info,warn,error)")
	f.StringVar(&fileFilter, "file", "", "filter by file name (comma-separated)")
	f.StringVar(&packetFilter, "packet", "", "show only entries of this packet id")
	f.StringVarP(&searchFilter, "search", "s", "", "case-insensitive text search")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	resp, err := e.svc.Logs(cmd.Context())
	if err != nil {
		return err
	}
	printWarnings(os.Stderr, resp.Warnings)

	filter := output.NewFilter(splitList(levelFilter), splitList(fileFilter), packetFilter, searchFilter)
	entries := filter.Apply(resp.Logs)

	var renderer output.Renderer
	if jsonOutput() {
		renderer = output.NewJSONRenderer(stdout)
	} else {
		colors := palette.ColorMap(resp.Packets)
		renderer = output.NewTextRenderer(stdout, colors, output.ColorEnabled(colorMode, stdout))
	}
	for _, entry := range entries {
		if err := renderer.Render(entry); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	if !jsonOutput() {
		fmt.Fprintf(os.Stderr, "%d of %d entries from %d file(s), %d packet(s)\n",
			len(entries), resp.TotalEntries, len(resp.Files), len(resp.Packets))
	}
	return nil
}
