package key

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/common/keypair"
)

var (
	GenerateCmd *cobra.Command

	flagParse  bool
	flagFormat string = "default"
)

type keyPair struct {
	Seed    string `json:"seed" yaml:"seed"`
	Address string `json:"address" yaml:"address"`
}

var defaultTemplate = template.Must(template.New("").Parse(`   Secret Seed: {{ .Seed }}
Public Address: {{ .Address }}
`))

func defaultEncode(v interface{}, w io.Writer) error {
	return defaultTemplate.Execute(w, v)
}

func onelineEncode(v interface{}, w io.Writer) error {
	kp := v.(keyPair)
	_, err := fmt.Fprintf(w, "%s %s\n", kp.Seed, kp.Address)
	return err
}

var encoders = map[string]cmdcommon.Encode{
	"default":    defaultEncode,
	"oneline":    onelineEncode,
	"json":       cmdcommon.DefaultEncodes["json"],
	"prettyjson": cmdcommon.DefaultEncodes["prettyjson"],
	"yaml":       cmdcommon.DefaultEncodes["yaml"],
}

func init() {
	GenerateCmd = &cobra.Command{
		Use:   "generate [<secret seed>]",
		Short: "Generate keypair, or show the address of the secret seed with --parse",
		Args:  cobra.MaximumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			input := strings.TrimSpace(strings.Join(args, " "))
			if flagParse && len(input) < 1 {
				cmdcommon.PrintFlagsError(c, "--parse", errors.New("--parse needs <secret seed>"))
			}

			encode, ok := encoders[flagFormat]
			if !ok {
				cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", flagFormat))
			}

			kp, err := generateKP(input, flagParse)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<secret seed>", fmt.Errorf("failed to parse secret seed: %v", err))
			}

			if err = encode(keyPair{Seed: kp.Seed(), Address: kp.Address()}, os.Stdout); err != nil {
				cmdcommon.ExitWithError(err)
			}
		},
	}

	GenerateCmd.Flags().BoolVar(&flagParse, "parse", flagParse, "parse secret seed")
	GenerateCmd.Flags().StringVar(&flagFormat, "format", flagFormat, "format={default, oneline, json, prettyjson, yaml}")
}

func generateKP(seed string, parse bool) (*keypair.Full, error) {
	if !parse {
		return keypair.Random(), nil
	}

	kp, err := keypair.Parse(seed)
	if err != nil {
		return nil, err
	}

	full, ok := kp.(*keypair.Full)
	if !ok {
		return nil, errors.New("not a secret seed")
	}

	return full, nil
}
