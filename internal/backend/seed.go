package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/services"
	"billhub/internal/storage"
)

// Seed is the YAML document loaded by SEED_FILE and "billhubctl seed".
type Seed struct {
	Users []SeedUser `yaml:"users"`
	Bills []SeedBill `yaml:"bills"`
}

type SeedUser struct {
	Phone    string `yaml:"phone"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	LastName string `yaml:"lastname"`
}

// SeedBill is one bill owned by Phone. DueDate is kept as text so that
// malformed dates can be seeded on purpose.
type SeedBill struct {
	Phone    string  `yaml:"phone"`
	ID       string  `yaml:"billId"`
	Category string  `yaml:"category"`
	Amount   float64 `yaml:"amount"`
	Status   string  `yaml:"status"`
	DueDate  string  `yaml:"dueDate"`
	Month    string  `yaml:"month"`
	Year     string  `yaml:"year"`
}

// SeedResult counts what Apply wrote.
type SeedResult struct {
	Users int
	Bills int
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

// Apply registers users and upserts bills. Users that already exist are
// left untouched.
func (s *Seed) Apply(ctx context.Context, store Store) (SeedResult, error) {
	var res SeedResult
	auth := services.NewAuthService(store, log.Discard())

	for _, u := range s.Users {
		_, err := auth.Register(ctx, services.RegisterInput{
			Phone:    u.Phone,
			Name:     u.Name,
			LastName: u.LastName,
			Password: u.Password,
		})
		switch {
		case errors.Is(err, storage.ErrConflict):
		case err != nil:
			return res, fmt.Errorf("user %s: %w", u.Phone, err)
		default:
			res.Users++
		}
	}

	for _, sb := range s.Bills {
		b := sb.Bill()
		if err := b.Validate(); err != nil {
			return res, fmt.Errorf("bill %s: %w", sb.ID, err)
		}
		if err := store.PutBill(ctx, sb.Phone, b); err != nil {
			return res, err
		}
		res.Bills++
	}
	return res, nil
}

// Bill converts the seed row to a domain bill.
func (sb SeedBill) Bill() core.Bill {
	due := core.Undated()
	if sb.DueDate != "" {
		due = core.DueString(sb.DueDate)
	}
	status := core.Status(sb.Status)
	if status == "" {
		status = core.StatusUnpaid
	}
	return core.Bill{
		ID:       sb.ID,
		Amount:   sb.Amount,
		Status:   status,
		DueDate:  due,
		Month:    sb.Month,
		Year:     sb.Year,
		Category: core.Category(sb.Category),
	}
}
