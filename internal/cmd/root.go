package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/skein/internal/config"
	"github.com/atikulmunna/skein/internal/logger"
)

var (
	cfgFile   string
	outputFmt string
	colorMode string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "skein",
	Short: "Skein: multi-file log parsing and packet tracking",
	Long: `Skein reads a directory of pipe-delimited log files, rebuilds multi-line
entries, merges them into one timeline and follows packets (units of work
such as a job) across entries. Results are available as terminal output,
JSON and a small HTTP API with a live summary feed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(viper.GetString("log.level"), os.Stderr)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.skein.yaml)")
	pf.StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	pf.StringVar(&colorMode, "color", "auto", "colorize text output: auto, always, never")
	pf.String("logs-dir", "logs", "directory containing log files")
	pf.String("pattern", "*.log", "glob selecting log files inside the directory (supports **)")
	pf.String("log-level", "info", "diagnostic log level: debug, info, warn, error")

	_ = viper.BindPFlag("logs.dir", pf.Lookup("logs-dir"))
	_ = viper.BindPFlag("logs.pattern", pf.Lookup("pattern"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".skein")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			cobra.CheckErr(fmt.Errorf("read config %s: %w", cfgFile, err))
		}
	}
}
