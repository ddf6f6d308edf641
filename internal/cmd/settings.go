package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/skein/internal/output"
	"github.com/atikulmunna/skein/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the stored packet tracking settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.store.Get(cmd.Context())
		if err != nil {
			return err
		}
		return output.WriteJSON(stdout, s)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update one or more settings",
	Long: `Update the stored settings. Only the flags given are changed.

Examples:
  skein settings set --strategy counter --start "BEGIN" --end "END"
  skein settings set --enable-packets=false`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

func init() {
	f := settingsSetCmd.Flags()
	f.Bool("enable-packets", true, "enable packet tracking")
	f.String("start", "", "packet start pattern (regular expression)")
	f.String("end", "", "packet end pattern (regular expression)")
	f.String("id-pattern", "", "packet id pattern with one capture group")
	f.String("strategy", "", "correlation strategy: counter or identifier")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// updateFromFlags builds an Update holding only the flags the user set.
func updateFromFlags(cmd *cobra.Command) (settings.Update, error) {
	var u settings.Update
	f := cmd.Flags()

	if f.Changed("enable-packets") {
		v, err := f.GetBool("enable-packets")
		if err != nil {
			return u, err
		}
		u.EnablePackets = &v
	}
	for name, dst := range map[string]**string{
		"start":      &u.PacketStartPattern,
		"end":        &u.PacketEndPattern,
		"id-pattern": &u.PacketIDPattern,
		"strategy":   &u.Strategy,
	} {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetString(name)
		if err != nil {
			return u, err
		}
		*dst = &v
	}
	return u, nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	u, err := updateFromFlags(cmd)
	if err != nil {
		return err
	}
	if u == (settings.Update{}) {
		return fmt.Errorf("nothing to update: pass at least one flag")
	}
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.store.Update(cmd.Context(), u)
	if err != nil {
		return err
	}
	return output.WriteJSON(stdout, s)
}
