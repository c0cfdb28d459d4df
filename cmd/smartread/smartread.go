// Package smartreadcmder
package smartreadcmder

import (
	"github.com/spf13/cobra"

	addcmder "github.com/papercomputeco/smartread/cmd/smartread/add"
	authcmder "github.com/papercomputeco/smartread/cmd/smartread/auth"
	configcmder "github.com/papercomputeco/smartread/cmd/smartread/config"
	dedupcmder "github.com/papercomputeco/smartread/cmd/smartread/dedup"
	memorycmder "github.com/papercomputeco/smartread/cmd/smartread/memory"
	rephrasecmder "github.com/papercomputeco/smartread/cmd/smartread/rephrase"
	servecmder "github.com/papercomputeco/smartread/cmd/smartread/serve"
	versioncmder "github.com/papercomputeco/smartread/cmd/version"
)

const smartreadLongDesc string = `Smartread remembers what you read and rephrases new pages around it.

Pages you add are deduplicated, distilled into memory snippets and stored.
Later pages are rewritten to highlight what relates to those memories.

Run the HTTP and MCP server using:
  smartread serve

Work with pages directly using:
  smartread add page.html          Store a page in memory
  smartread rephrase page.html     Rephrase a page against memory
  smartread dedup check -u <url>   Check whether a page was already added
  smartread memory browse          Browse stored memories`

const smartreadShortDesc string = "Smartread - memory-aware reading"

func NewSmartreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "smartread",
		Short:        smartreadShortDesc,
		Long:         smartreadLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .smartread/ config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(rephrasecmder.NewRephraseCmd())
	cmd.AddCommand(dedupcmder.NewDedupCmd())
	cmd.AddCommand(memorycmder.NewMemoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
