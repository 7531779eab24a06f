package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datasage-ai/datasage/internal/config"
	"github.com/datasage-ai/datasage/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(configFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFile)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and populate the demo retail database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Seed(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo data into %s\n", cfg.Database.DSN)
		return nil
	},
}
