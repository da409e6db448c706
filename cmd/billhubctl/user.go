package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"billhub/internal/services"
	"billhub/internal/storage"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage resident accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a resident",
	Long: `Register a resident with a bcrypt-hashed password.

Examples:
  billhubctl user add --phone 07701234567 --name Ali --last-name Hassan --password secret`,
	RunE: runUserAdd,
}

func init() {
	userAddCmd.Flags().String("phone", "", "phone number used to sign in")
	userAddCmd.Flags().String("name", "", "first name")
	userAddCmd.Flags().String("last-name", "", "last name")
	userAddCmd.Flags().String("password", "", "password")
	_ = userAddCmd.MarkFlagRequired("phone")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	in := services.RegisterInput{}
	in.Phone, _ = cmd.Flags().GetString("phone")
	in.Name, _ = cmd.Flags().GetString("name")
	in.LastName, _ = cmd.Flags().GetString("last-name")
	in.Password, _ = cmd.Flags().GetString("password")

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	u, err := services.NewAuthService(store, logger).Register(ctx, in)
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("phone %s is already registered", in.Phone)
	}
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]string{"id": u.ID, "phone": u.Phone, "name": u.DisplayName()})
	}
	fmt.Printf("Registered %s (%s)\n", u.DisplayName(), u.Phone)
	return nil
}
