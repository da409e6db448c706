package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"billhub/internal/billview"
	"billhub/internal/core"
	"billhub/internal/i18n"
	"billhub/internal/services"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Inspect resident bills",
}

var billsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills as the bills screen shows them",
	Long: `List one resident's bills of a service, filtered and sorted the same
way as the bills screen.

Examples:
  billhubctl bills list --phone 07701234567
  billhubctl bills list --phone 07701234567 --service gas --month 3 --year 2024 --status unpaid --sort amountHigh`,
	RunE: runBillsList,
}

func init() {
	billsListCmd.Flags().String("phone", "", "owner phone number")
	billsListCmd.Flags().String("service", string(core.Water), "water, electricity, gas or fees")
	billsListCmd.Flags().String("month", "", "month filter (1-12)")
	billsListCmd.Flags().String("year", "", "year filter")
	billsListCmd.Flags().String("status", string(billview.StatusAll), "all, paid or unpaid")
	billsListCmd.Flags().String("sort", string(billview.SortNewest), "newest, oldest, amountHigh or amountLow")
	billsListCmd.Flags().String("lang", "en", "language for amounts and dates")
	_ = billsListCmd.MarkFlagRequired("phone")

	billsCmd.AddCommand(billsListCmd)
	rootCmd.AddCommand(billsCmd)
}

type billLine struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	Due    string  `json:"due"`
	Month  string  `json:"month"`
	Year   string  `json:"year"`
}

func runBillsList(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	phone, _ := flags.GetString("phone")
	service, _ := flags.GetString("service")
	lang, _ := flags.GetString("lang")

	q := url.Values{}
	for _, name := range []string{"month", "year", "status", "sort"} {
		v, _ := flags.GetString(name)
		q.Set(name, v)
	}
	sel := billview.SelectionFromQuery(q)

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := services.NewBillService(store, store, nil, nil, logger)
	bills, err := svc.List(ctx, phone, core.CategoryOrDefault(service), sel)
	if err != nil {
		return err
	}

	now := time.Now()
	lines := make([]billLine, 0, len(bills))
	for _, b := range bills {
		lines = append(lines, billLine{
			ID:     b.ID,
			Amount: b.Amount,
			Status: string(b.Status),
			Due:    billview.FormatDueDate(b.DueDate, now),
			Month:  b.Month,
			Year:   b.Year,
		})
	}
	if jsonOut {
		return printJSON(map[string]any{"bills": lines, "count": len(lines)})
	}
	if len(lines) == 0 {
		fmt.Println("No bills found")
		return nil
	}

	l := i18n.For(i18n.Negotiate(lang, "", language.English.String()))
	w := newTable()
	printTableHeader(w, "ID", "AMOUNT", "STATUS", "DUE", "MONTH", "YEAR")
	for _, ln := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ln.ID, l.Amount(ln.Amount), ln.Status, ln.Due, ln.Month, ln.Year)
	}
	return w.Flush()
}
