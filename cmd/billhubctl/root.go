package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"billhub/internal/backend"
	"billhub/internal/cli"
	"billhub/internal/config"
	"billhub/internal/log"
)

var (
	jsonOut bool
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billhubctl",
	Short: "Operator tool for the billing hub",
	Long: `billhubctl manages the billing hub document store.

Examples:
  billhubctl seed --file seed.yaml
  billhubctl user add --phone 07701234567 --name Ali --password secret
  billhubctl bills list --phone 07701234567 --service water --status unpaid
  billhubctl oauth-init --client-file credentials.json`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
		logger = cli.NewLogger(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"), log.ComponentCLI)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")
}

// openStore builds the configured document store without sessions or broker.
func openStore(ctx context.Context) (backend.Store, func() error, error) {
	cfg := config.Load()
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	bcfg.AMQPURL = ""
	bcfg.SeedFile = ""
	bcfg.Sessions = backend.MemorySessions

	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	return res.Store, res.Cleanup, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(w *tabwriter.Writer, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
