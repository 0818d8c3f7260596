package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/version"
)

var flagVersionFormat string

func init() {
	versionCmd.Flags().StringVar(&flagVersionFormat, "format", flagVersionFormat, "format={json, prettyjson, yaml}; by default one line")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(c *cobra.Command, args []string) {
		if len(flagVersionFormat) < 1 {
			fmt.Printf("%s\n", version.ToDetailVersion())
			return
		}

		encode, ok := common.DefaultEncodes[flagVersionFormat]
		if !ok {
			common.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", flagVersionFormat))
		}
		if err := encode(version.ToMap(), os.Stdout); err != nil {
			common.ExitWithError(err)
		}
	},
}
