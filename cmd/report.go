package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/resultlog"
	"github.com/mmwave-lab/berperf/sim/trace"
)

// printCampaignSummary writes one row per MCS sweep.
func printCampaignSummary(w io.Writer, report *sim.CampaignReport) {
	if report == nil {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"MCS", "Batches", "Points", "Failed", "Bit errors", "Stopped early", "First error-free Eb/N0"})
	for _, sw := range report.Sweeps {
		if sw == nil {
			continue
		}
		s := trace.Summarize(sw.Trace)
		firstClean := "-"
		if !math.IsNaN(s.FirstErrorFreeDB) {
			firstClean = sim.FormatEbN0(s.FirstErrorFreeDB) + " dB"
		}
		table.Append([]string{
			sw.MCS,
			strconv.Itoa(s.BatchesRun),
			strconv.Itoa(s.PointsRun),
			strconv.Itoa(s.PointsFailed),
			strconv.FormatInt(s.TotalBitErrors, 10),
			strconv.FormatBool(s.StoppedEarly),
			firstClean,
		})
	}
	table.Render()
}

// printResultTable writes one row per saved configuration.
func printResultTable(w io.Writer, sets []*resultlog.ResultSet) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"MCS", "Eb/N0", "Trials", "Bit errors", "BER", "BER 95% CI", "PER", "Mean iterations"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, rs := range sets {
		s := rs.Summarize()
		table.Append([]string{
			rs.Metadata.MCS,
			sim.FormatEbN0(rs.Metadata.EbN0dB),
			strconv.Itoa(s.Trials),
			strconv.FormatInt(s.BitErrors, 10),
			fmt.Sprintf("%.3e", s.BER),
			fmt.Sprintf("[%.2e, %.2e]", s.BERLow, s.BERHigh),
			fmt.Sprintf("%.3f", s.PER),
			fmt.Sprintf("%.2f", s.MeanIterations),
		})
	}
	table.Render()
}

// printMCSTable writes the MCS parameter table.
func printMCSTable(w io.Writer, t *sim.MCSTable, simulatableOnly bool) error {
	ids := t.IDs()
	if simulatableOnly {
		ids = t.Simulatable()
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"MCS", "Modulation rate", "Code rate", "Repetition", "Simulatable"})
	for _, id := range ids {
		p, err := t.Lookup(id)
		if err != nil {
			return err
		}
		table.Append([]string{
			p.ID,
			strconv.Itoa(p.ModulationRate),
			strconv.FormatFloat(p.CodeRate, 'f', -1, 64),
			strconv.Itoa(p.Repetition),
			strconv.FormatBool(p.Simulatable()),
		})
	}
	table.Render()
	return nil
}
