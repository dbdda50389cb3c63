package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/eflowrec/internal/calo"
	"github.com/banshee-data/eflowrec/internal/showerparams"
)

func newParamsCommand() *cobra.Command {
	var paramsPath string

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the bins of a shower parameter table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if paramsPath == "" {
				return errors.New("--params is required")
			}
			tbl, err := showerparams.Load(paramsPath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderParams(tbl))
			return err
		},
	}
	cmd.Flags().StringVarP(&paramsPath, "params", "p", "", "Shower parameter table (TOML)")
	return cmd
}

func renderParams(tbl *showerparams.Table) string {
	energies := tbl.EnergyPoints()
	edges := tbl.EtaEdges()

	var rows [][]string
	for ie, e := range energies {
		for ieta := 0; ieta < len(edges)-1; ieta++ {
			bin, ok := tbl.Bin(ie, ieta)
			if !ok {
				continue
			}
			layers := make([]calo.Layer, 0, len(bin.Responses))
			for l := range bin.Responses {
				layers = append(layers, l)
			}
			sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })

			for _, l := range layers {
				r := bin.Responses[l]
				rings := make([]string, len(r.Rings))
				for i, ring := range r.Rings {
					rings[i] = ring.String()
				}
				rows = append(rows, []string{
					fmt.Sprintf("%g", e),
					fmt.Sprintf("[%g, %g)", edges[ieta], edges[ieta+1]),
					fmt.Sprintf("%.3f", bin.FirstInteractionFraction),
					l.String(),
					fmt.Sprintf("%.3f", r.MeanFactor),
					fmt.Sprintf("%.3f", r.SigmaFactor),
					strings.Join(rings, " "),
				})
			}
		}
	}

	return renderTable(
		[]string{"E (GeV)", "|eta|", "Fraction", "Layer", "Mean", "Sigma", "Rings"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}
