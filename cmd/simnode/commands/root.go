package commands

import (
	"github.com/gridsim/simnode/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for simnode
var RootCmd = &cobra.Command{
	Use:              "simnode",
	Short:            "simnode simulation component",
	TraverseChildren: true,
}
