package commands

import (
	"github.com/ecoblock/ecoblock/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for EcoBlock
var RootCmd = &cobra.Command{
	Use:              "ecoblock",
	Short:            "ecoblock node",
	TraverseChildren: true,
}

func init() {
	RootCmd.AddCommand(
		NewRunCmd(),
		NewKeygenCmd(),
		VersionCmd,
	)
}
