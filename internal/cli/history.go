package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/regexgen/internal/model"
	"github.com/rcliao/regexgen/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		selector string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return cmdErr("open store", err)
			}
			defer s.Close()

			runs, err := s.List(cmd.Context(), store.ListParams{Selector: selector, Limit: limit})
			if err != nil {
				return cmdErr("list", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if runs == nil {
					runs = []model.Run{}
				}
				b, _ := json.MarshalIndent(runs, "", "  ")
				fmt.Fprintln(out, string(b))
				return nil
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %-12s %4dx  %-14s %-10s %s\n",
					r.ID[:10],
					humanize.Time(r.CreatedAt),
					r.Selector,
					r.Count,
					strings.Join(r.Formats, ","),
					r.Layout,
					humanize.Bytes(uint64(r.Bytes)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selector, "selector", "s", "", "Filter by selector")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Max results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCmd(a), newHistoryRmCmd(a))
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded run and the files it wrote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return cmdErr("open store", err)
			}
			defer s.Close()

			run, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return cmdErr("get", err)
			}

			b, _ := json.MarshalIndent(run, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newHistoryRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return cmdErr("open store", err)
			}
			defer s.Close()

			run, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return cmdErr("get", err)
			}
			if err := s.Rm(cmd.Context(), run.ID); err != nil {
				return cmdErr("rm", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
			return nil
		},
	}
}
