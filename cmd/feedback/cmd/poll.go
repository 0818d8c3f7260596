package cmd

import (
	"github.com/spf13/cobra"

	"boscoin.io/feedback/cmd/feedback/cmd/poll"
)

var (
	pollCmd *cobra.Command
)

func init() {
	pollCmd = &cobra.Command{
		Use:   "poll",
		Short: "Create, answer and inspect polls thru a node",
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	pollCmd.AddCommand(
		poll.CreateCmd,
		poll.RespondCmd,
		poll.SealCmd,
		poll.GetCmd,
		poll.ListCmd,
		poll.TallyCmd,
		poll.EntryCmd,
		poll.CounterCmd,
		poll.EventsCmd,
	)
	rootCmd.AddCommand(pollCmd)
}
