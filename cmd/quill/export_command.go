package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export queue corpora and settings as JSON snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				target := strings.TrimSpace(dir)
				if target == "" {
					target = cfg.Paths.ExportDir
				}
				if err := st.Export(cmd.Context(), target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Export directory (defaults to the configured export path)")
	return cmd
}
