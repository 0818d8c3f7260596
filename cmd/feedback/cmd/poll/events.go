package poll

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/client"
)

var (
	EventsCmd *cobra.Command

	flagStream    bool
	flagEventPoll string
	flagEventKind string
)

func init() {
	EventsCmd = &cobra.Command{
		Use:   "events",
		Short: "List or follow the ledger events",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			var queries []client.Q
			if len(flagEventPoll) > 0 {
				parsePollID(c, flagEventPoll)
				queries = append(queries, client.Q{Key: client.QueryPoll, Value: flagEventPoll})
			}
			if len(flagEventKind) > 0 {
				queries = append(queries, client.Q{Key: client.QueryKind, Value: flagEventKind})
			}

			cl := newClient(c)
			defer cl.Close()

			if !flagStream {
				ctx, cancel := newContext(c)
				defer cancel()

				output(cl.LoadEvents(ctx, append(queries, pageQueries()...)...))
				return
			}

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				cmdcommon.Interrupt(nil)
				cancel()
			}()

			err := cl.StreamEvents(ctx, func(e client.Event) {
				if err := cmdcommon.DefaultEncodes[flagFormat](e, os.Stdout); err != nil {
					cmdcommon.ExitWithError(err)
				}
			}, queries...)
			if err != nil {
				cmdcommon.ExitWithError(err)
			}
		},
	}
	addClientFlags(EventsCmd)
	addPageFlags(EventsCmd)
	EventsCmd.Flags().BoolVar(&flagStream, "stream", flagStream, "follow the new events")
	EventsCmd.Flags().StringVar(&flagEventPoll, "poll", flagEventPoll, "only the events of the poll id")
	EventsCmd.Flags().StringVar(&flagEventKind, "kind", flagEventKind, "only the events of the kind, {PollCreated, ResponseRecorded, PollSealed}")
}
