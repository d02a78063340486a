package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"quill/internal/articles"
	"quill/internal/config"
	"quill/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show automation settings and queue totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()

				settings, err := st.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Setting", "Value"},
					[][]string{
						{"auto mode", yesNo(settings.AutoMode)},
						{"auto post", yesNo(settings.AutoPostEnabled)},
						{"manual approval", yesNo(settings.ManualApprovalRequired)},
						{"min impact score", strconv.Itoa(settings.MinScoreThreshold)},
						{"max articles per run", strconv.Itoa(settings.MaxArticlesPerRun)},
						{"fuzzy duplicate detection", yesNo(settings.EnableDuplicateDetection)},
					},
					[]columnAlignment{alignLeft, alignLeft},
				))

				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(stats))
				total := 0
				for _, status := range articles.AllStatuses() {
					if count, ok := stats[status]; ok {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
						total += count
					}
				}
				if total == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
