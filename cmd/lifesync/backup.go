package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arnold/lifesync-api/internal/backup"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, store, err := bootstrap(nil)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(backup.Export(store)); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			if output != "" && output != "-" {
				log.Infow("Backup written", "path", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all data with a JSON backup",
		Long: `Replace all data with a JSON backup.

Every exported key is overwritten; keys missing from the backup are reset
to their defaults. Stop a running server first, it keeps data in memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			_, log, store, err := bootstrap(nil)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := backup.Import(store, data); err != nil {
				return err
			}
			log.Infow("Backup imported", "path", args[0])
			return nil
		},
	}
	return cmd
}
