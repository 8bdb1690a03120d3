// Command prefixlens clusters product catalogs by shared leading name tokens
// and scores products for purchase chronicity.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prefixlens/backend/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "prefixlens",
		Short:         "Group product names by their common leading tokens",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().Bool("debug", false, "log every resolved product")
	_ = v.BindPFlag("clustering.debug", root.PersistentFlags().Lookup("debug"))

	root.AddCommand(
		newClusterCmd(v),
		newScoreCmd(v),
		newServeCmd(v),
	)
	return root
}

// loadConfig resolves configuration after flags have been parsed
func loadConfig(v *viper.Viper) (*config.Config, error) {
	return config.LoadWith(v)
}
