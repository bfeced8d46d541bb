package ctrl

import (
	"github.com/openziti/surfpool/cmd/surfpool/surfpool"
	"github.com/spf13/cobra"
)

func init() {
	surfpool.RootCmd.AddCommand(ctrlCmd)
}

var ctrlCmd = &cobra.Command{
	Use:   "ctrl",
	Short: "Control running metrics instruments",
}
