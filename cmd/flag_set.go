package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/coordsys/internal/config"
	"github.com/zjrosen/coordsys/internal/flags"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var flagSetCmd = &cobra.Command{
	Use:   "flag:set NAME true|false",
	Short: "Turn a feature flag on or off in the config file",
	Long: `Write a feature flag to the config file in use. Other settings and comments
in the file are kept.

Flags:
  path-cache       serve repeated path queries from the cache
  strict-defaults  fail lookups that fall back to a non-default version

Examples:
  coordsys flag:set strict-defaults true
  coordsys flag:set path-cache false --config ./coordsys.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("flag value must be true or false, got %q", args[1])
		}
		if err := config.SaveFlag(configFilePath(), args[0], enabled); err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FlagDTO{Name: args[0], Enabled: enabled})
	},
}

var flagListCmd = &cobra.Command{
	Use:   "flag:list",
	Short: "List feature flags and their configured values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		known := flags.Known()
		dtos := make([]presentation.FlagDTO, 0, len(known))
		for _, f := range known {
			enabled, ok := cfg.Flags[f.Name]
			if !ok {
				enabled = f.Default
			}
			dtos = append(dtos, presentation.FlagDTO{Name: f.Name, Enabled: enabled, Description: f.Description})
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(dtos)
	},
}

func init() {
	rootCmd.AddCommand(flagSetCmd)
	rootCmd.AddCommand(flagListCmd)
}
