package poll

import (
	"strconv"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/client"
	"boscoin.io/feedback/lib/common"
)

var (
	GetCmd     *cobra.Command
	ListCmd    *cobra.Command
	TallyCmd   *cobra.Command
	EntryCmd   *cobra.Command
	CounterCmd *cobra.Command

	flagLimit   uint64
	flagReverse bool
	flagCursor  string
	flagIsHash  bool
)

func pageQueries() (queries []client.Q) {
	if flagLimit > 0 {
		queries = append(queries, client.Q{Key: client.QueryLimit, Value: strconv.FormatUint(flagLimit, 10)})
	}
	if flagReverse {
		queries = append(queries, client.Q{Key: client.QueryReverse, Value: "true"})
	}
	if len(flagCursor) > 0 {
		queries = append(queries, client.Q{Key: client.QueryCursor, Value: flagCursor})
	}

	return
}

func addPageFlags(c *cobra.Command) {
	c.Flags().Uint64Var(&flagLimit, "limit", flagLimit, "maximum number of records")
	c.Flags().BoolVar(&flagReverse, "reverse", flagReverse, "newest first")
	c.Flags().StringVar(&flagCursor, "cursor", flagCursor, "continue after this cursor")
}

//
// optionHash returns the tally key of `option`. With `--hash`, `option` is
// already the base58 hash, like the `choice` of a sealed poll.
//
func optionHash(option string) (common.Hash, error) {
	if flagIsHash {
		return common.ParseHash(option)
	}

	b, err := argBytes(option)
	if err != nil {
		return common.Hash{}, err
	}

	return common.MakeHash(b), nil
}

func init() {
	GetCmd = &cobra.Command{
		Use:   "get <poll id>",
		Short: "Show the poll",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			id := parsePollID(c, args[0])

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.LoadPoll(ctx, id))
		},
	}
	addClientFlags(GetCmd)

	ListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the polls",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.LoadPolls(ctx, pageQueries()...))
		},
	}
	addClientFlags(ListCmd)
	addPageFlags(ListCmd)

	TallyCmd = &cobra.Command{
		Use:   "tally <poll id> <option>",
		Short: "Show the number of responses of the option",
		Args:  cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			id := parsePollID(c, args[0])
			h, err := optionHash(args[1])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<option>", err)
			}

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.LoadTally(ctx, id, h))
		},
	}
	addClientFlags(TallyCmd)
	TallyCmd.Flags().BoolVar(&flagIsHash, "hash", flagIsHash, "<option> is the hash of the option")
	addHexFlag(TallyCmd)

	EntryCmd = &cobra.Command{
		Use:   "entry <poll id> <address>",
		Short: "Show whether the account responded to the poll",
		Args:  cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			id := parsePollID(c, args[0])

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.LoadEntry(ctx, id, args[1]))
		},
	}
	addClientFlags(EntryCmd)

	CounterCmd = &cobra.Command{
		Use:   "counter",
		Short: "Show the poll counter",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.LoadCounter(ctx))
		},
	}
	addClientFlags(CounterCmd)
}
