// Package seed fills an empty sandbox repository with fake customers.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"customer-store/internal/domain/customer"

	"github.com/brianvoe/gofakeit/v7"
)

// Generator produces customer attributes from a faker. A fixed seed gives the
// same customers on every run.
type Generator struct {
	faker *gofakeit.Faker
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Attributes returns one fake customer record without an id.
func (g *Generator) Attributes() map[string]any {
	return map[string]any{
		"name":    g.faker.Name(),
		"email":   g.faker.Email(),
		"phone":   g.faker.Phone(),
		"company": g.faker.Company(),
		"city":    g.faker.City(),
		"country": g.faker.Country(),
	}
}

// Customers inserts n fake customers unless repo already holds data. It
// returns how many were inserted.
func Customers(ctx context.Context, repo customer.Repository, gen *Generator, n int, logger *slog.Logger) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	existing, err := repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list existing customers: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "Skipping seed, repository is not empty", slog.Int("existing", len(existing)))
		return 0, nil
	}

	for i := 0; i < n; i++ {
		if _, err := repo.Insert(ctx, customer.New(0, gen.Attributes())); err != nil {
			return i, fmt.Errorf("seed: insert customer %d: %w", i+1, err)
		}
	}
	logger.InfoContext(ctx, "Seeded customers", slog.Int("count", n))
	return n, nil
}
