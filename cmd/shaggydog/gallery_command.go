package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shaggydog/internal/store"
)

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery <username>",
		Short: "List a user's stored transformations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			user, err := st.UserByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			summaries, err := st.ListTransformations(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No transformations for %s\n", user.Username)
				return nil
			}

			if !stdoutIsTerminal() {
				for _, summary := range summaries {
					fmt.Fprintf(out, "%d\t%s\t%s\n", summary.ID, summary.Breed, summary.CreatedAt.Format(time.RFC3339))
				}
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					fmt.Sprintf("%d", summary.ID),
					summary.Breed,
					summary.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Breed", "Created"}, rows, 1))
			return nil
		},
	}
	return cmd
}
