package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	mcsListTablePath string // Optional MCS table CSV
	mcsListAll       bool   // Include MCS values the chain cannot simulate
)

// mcsCmd prints the MCS parameter table
var mcsCmd = &cobra.Command{
	Use:   "mcs",
	Short: "List MCS parameters",
	Run: func(cmd *cobra.Command, args []string) {
		table, err := loadMCSTable(mcsListTablePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := printMCSTable(os.Stdout, table, !mcsListAll); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	mcsCmd.Flags().StringVar(&mcsListTablePath, "mcs-table", "", "MCS table CSV overriding the built-in 802.11ad table")
	mcsCmd.Flags().BoolVar(&mcsListAll, "all", false, "Also list MCS values with repetition or code rate 7/8")
	rootCmd.AddCommand(mcsCmd)
}
