package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPatternsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the available patterns with their indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.loadPatterns()
			if err != nil {
				return cmdErr("load patterns", err)
			}
			out := cmd.OutOrStdout()

			if asJSON {
				type entry struct {
					Index  int    `json:"index"`
					Name   string `json:"name"`
					Source string `json:"source"`
				}
				entries := make([]entry, 0, set.Len())
				for i, p := range set.Patterns() {
					entries = append(entries, entry{Index: i, Name: p.Name, Source: p.Source})
				}
				b, _ := json.MarshalIndent(entries, "", "  ")
				fmt.Fprintln(out, string(b))
				return nil
			}

			for i, p := range set.Patterns() {
				fmt.Fprintf(out, "%3d  %-12s %s\n", i, p.Name, p.Source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
