package poll

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/clock"
)

var (
	CreateCmd  *cobra.Command
	RespondCmd *cobra.Command
	SealCmd    *cobra.Command

	flagOpenFor string = "1h"
	flagHex     bool
)

// parseOpenFor reads a duration like "90s" or "1h" as poll milliseconds.
func parseOpenFor(s string) (clock.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	} else if d < 0 {
		return 0, fmt.Errorf("negative duration: %s", s)
	}

	return clock.DurationFromTime(d), nil
}

// argBytes returns the raw bytes of a title or an option. With `--hex`, `s`
// is hex encoded, so any byte sequence can be given.
func argBytes(s string) ([]byte, error) {
	if flagHex {
		return hex.DecodeString(s)
	}

	return []byte(s), nil
}

func addHexFlag(c *cobra.Command) {
	c.Flags().BoolVar(&flagHex, "hex", flagHex, "arguments are hex encoded bytes")
}

func init() {
	CreateCmd = &cobra.Command{
		Use:   "create <title> [<option>...]",
		Short: "Create new poll",
		Args:  cobra.MinimumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			kp := parseSecretSeed(c)

			openFor, err := parseOpenFor(flagOpenFor)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--open-for", err)
			}

			title, err := argBytes(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<title>", err)
			}

			options := make([][]byte, len(args)-1)
			for i, a := range args[1:] {
				if options[i], err = argBytes(a); err != nil {
					cmdcommon.PrintFlagsError(c, "<option>", err)
				}
			}

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.CreatePoll(ctx, kp, title, options, openFor))
		},
	}
	addClientFlags(CreateCmd)
	addSecretSeedFlag(CreateCmd)
	addHexFlag(CreateCmd)
	CreateCmd.Flags().StringVar(&flagOpenFor, "open-for", flagOpenFor, "how long the poll accepts responses, like \"90s\" or \"1h\"")

	RespondCmd = &cobra.Command{
		Use:   "respond <poll id> <option>",
		Short: "Record the response of the caller",
		Args:  cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			kp := parseSecretSeed(c)
			id := parsePollID(c, args[0])

			option, err := argBytes(args[1])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<option>", err)
			}

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.RecordResponse(ctx, kp, id, option))
		},
	}
	addClientFlags(RespondCmd)
	addSecretSeedFlag(RespondCmd)
	addHexFlag(RespondCmd)

	SealCmd = &cobra.Command{
		Use:   "seal <poll id>",
		Short: "Seal the expired poll and decide its choice",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			id := parsePollID(c, args[0])

			cl := newClient(c)
			defer cl.Close()

			ctx, cancel := newContext(c)
			defer cancel()

			output(cl.SealPoll(ctx, id))
		},
	}
	addClientFlags(SealCmd)
}
