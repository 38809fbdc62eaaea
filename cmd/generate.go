package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/phy"
	"github.com/mmwave-lab/berperf/sim/seqcache"
)

// defaultPayloadLength is the payload of one transmitted packet in bits.
const defaultPayloadLength = 262_143 * 8

var (
	genSequencesPath string   // Sequence store path
	genStoreBackend  string   // Sequence store backend
	genPayloadLength int      // Payload bits per sequence
	genCount         int      // Sequences per MCS
	genSeed          int64    // Payload and scrambler seed
	genMCS           []string // MCS values to generate, default all simulatable
	genTablePath     string   // Optional MCS table CSV
)

// generateCmd fills a sequence store with transmit waveforms
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the transmit sequence store",
	Run: func(cmd *cobra.Command, args []string) {
		if err := generateSequences(); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func generateSequences() error {
	table, err := loadMCSTable(genTablePath)
	if err != nil {
		return err
	}
	mcs, err := resolveMCS(table, genMCS)
	if err != nil {
		return err
	}

	store, err := seqcache.Open(genStoreBackend, genSequencesPath, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.Warnf("Closing sequence store: %v", err)
		}
	}()

	logrus.Infof("Generating %d sequences of %d bits for %d MCS into %s", genCount, genPayloadLength, len(mcs), genSequencesPath)
	g := &phy.Generator{
		Writer:        store,
		PayloadLength: genPayloadLength,
		Sequences:     genCount,
		Seed:          genSeed,
	}
	return g.Generate(mcs)
}

// resolveMCS looks up ids, or returns every simulatable MCS when ids is empty.
func resolveMCS(table *sim.MCSTable, ids []string) ([]sim.MCSParams, error) {
	if len(ids) == 0 {
		ids = table.Simulatable()
	}
	params := make([]sim.MCSParams, 0, len(ids))
	for _, id := range ids {
		p, err := table.Lookup(id)
		if err != nil {
			return nil, err
		}
		if !p.Simulatable() {
			return nil, fmt.Errorf("MCS %s cannot be simulated (repetition %d, code rate %v)", p.ID, p.Repetition, p.CodeRate)
		}
		params = append(params, p)
	}
	return params, nil
}

func init() {
	generateCmd.Flags().StringVar(&genSequencesPath, "sequences", "Sequence", "Sequence store path")
	generateCmd.Flags().StringVar(&genStoreBackend, "store", seqcache.BackendDir, "Sequence store backend (dir, leveldb)")
	generateCmd.Flags().IntVar(&genPayloadLength, "payload-length", defaultPayloadLength, "Payload bits per sequence")
	generateCmd.Flags().IntVar(&genCount, "count", 50, "Sequences per MCS")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Seed for payload bits and scrambler registers")
	generateCmd.Flags().StringSliceVar(&genMCS, "mcs", nil, "MCS identifiers (default: every simulatable MCS)")
	generateCmd.Flags().StringVar(&genTablePath, "mcs-table", "", "MCS table CSV overriding the built-in 802.11ad table")
	rootCmd.AddCommand(generateCmd)
}
