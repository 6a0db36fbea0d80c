package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonyy2018/rresume/internal/output"
	"github.com/jasonyy2018/rresume/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("debug") {
			return output.Write(cmd.OutOrStdout(), output.FormatJSON, version.Get())
		}
		_, err := cmd.OutOrStdout().Write([]byte(version.Full() + "\n"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
