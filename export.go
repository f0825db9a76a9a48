package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"median/store"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the current collections to a yaml or json fixture file",
		Long: `Loads the store exactly as serve would and writes it out. The file can be
used as seed.path or uploaded with migrate --seed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cliStore(cmd, opts)
			if err != nil {
				return err
			}
			if err := store.SaveSeedFile(cmd.Context(), args[0], s.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", args[0])
			return nil
		},
	}
}
