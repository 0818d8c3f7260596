package poll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/client"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/common/keypair"
)

var (
	flagEndpoint   string = common.GetENVValue("FEEDBACK_ENDPOINT", fmt.Sprintf("http://localhost:%d", common.DefaultPort))
	flagNetworkID  string = common.GetENVValue("FEEDBACK_NETWORK_ID", "")
	flagSecretSeed string = common.GetENVValue("FEEDBACK_SECRET_SEED", "")
	flagFormat     string = "prettyjson"
	flagTimeout    string = "10s"
	flagRetry      bool
)

// addClientFlags adds the flags every poll command shares.
func addClientFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagEndpoint, "endpoint", flagEndpoint, "endpoint of the node")
	c.Flags().StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id")
	c.Flags().StringVar(&flagFormat, "format", flagFormat, "output format, {json, prettyjson, yaml}")
	c.Flags().StringVar(&flagTimeout, "timeout", flagTimeout, "timeout of the request")
	c.Flags().BoolVar(&flagRetry, "retry", flagRetry, "retry the request when the node is unreachable")
}

func addSecretSeedFlag(c *cobra.Command) {
	c.Flags().StringVar(&flagSecretSeed, "secret-seed", flagSecretSeed, "secret seed of the caller")
}

func newClient(c *cobra.Command) *client.Client {
	endpoint, err := common.ParseEndpoint(flagEndpoint)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--endpoint", err)
	}

	if _, ok := cmdcommon.DefaultEncodes[flagFormat]; !ok {
		cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", flagFormat))
	}

	var retrySetting *common.RetrySetting
	if flagRetry {
		retrySetting = common.NewDefaultRetrySetting()
	}

	cl, err := client.NewClient(endpoint, []byte(flagNetworkID), retrySetting)
	if err != nil {
		cmdcommon.ExitWithError(err)
	}

	return cl
}

func newContext(c *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, err := time.ParseDuration(flagTimeout)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--timeout", err)
	}

	return context.WithTimeout(context.Background(), timeout)
}

func parseSecretSeed(c *cobra.Command) keypair.KP {
	if len(flagNetworkID) < 1 {
		cmdcommon.PrintFlagsError(c, "--network-id", errors.New("--network-id must be given"))
	}

	kp, err := keypair.Parse(flagSecretSeed)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--secret-seed", err)
	}
	if _, ok := kp.(*keypair.Full); !ok {
		cmdcommon.PrintFlagsError(c, "--secret-seed", errors.New("address given, not a secret seed"))
	}

	return kp
}

func parsePollID(c *cobra.Command, s string) uint64 {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "<poll id>", err)
	}

	return id
}

func output(v interface{}, err error) {
	if err != nil {
		cmdcommon.ExitWithError(err)
	}

	if err = cmdcommon.DefaultEncodes[flagFormat](v, os.Stdout); err != nil {
		cmdcommon.ExitWithError(err)
	}
}
