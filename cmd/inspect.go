package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmwave-lab/berperf/sim/resultlog"
)

// inspectCmd summarizes a finished run directory
var inspectCmd = &cobra.Command{
	Use:   "inspect <run-dir>",
	Short: "Summarize BER/PER results of a run directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sets, err := resultlog.LoadDir(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if len(sets) == 0 {
			logrus.Warnf("No results in %s", args[0])
			return
		}
		printResultTable(os.Stdout, sets)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
