package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"billhub/internal/backend"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users and bills from a YAML file",
	Long: `Load users and bills into the configured document store.

Users that already exist are skipped; bills are upserted by id.

Examples:
  billhubctl seed --file seed.yaml
  DATA_BACKEND=sqlite SQLITE_DB_PATH=./data/billhub.db billhubctl seed -f seed.yaml`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringP("file", "f", "seed.yaml", "seed file to load")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	seed, err := backend.LoadSeed(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := seed.Apply(ctx, store)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(res)
	}
	fmt.Printf("Seeded %d users and %d bills from %s\n", res.Users, res.Bills, path)
	return nil
}
