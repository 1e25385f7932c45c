// internal/service/finance_service.go
package service

import (
	"context"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type FinanceService struct {
	store repository.Datastore
}

func NewFinanceService(store repository.Datastore) *FinanceService {
	return &FinanceService{store: store}
}

func (s *FinanceService) Add(ctx context.Context, e *domain.FinanceEntry) error {
	if !validDate(e.Date) {
		return domain.NewValidationError("date", "expected YYYY-MM-DD")
	}
	if e.Name == "" {
		return domain.NewValidationError("name", "entry name is required")
	}
	if e.Type != domain.FinanceCredit && e.Type != domain.FinanceDebit {
		return domain.NewValidationError("type", "must be credit or debit")
	}
	if e.Amount < 0 {
		return domain.NewValidationError("amount", "must not be negative")
	}

	return s.store.AddFinanceEntry(ctx, e)
}

// List returns entries for a period (all when period is empty) together with
// the running balance. The balance is always recomputed, never stored.
func (s *FinanceService) List(ctx context.Context, period string) ([]*domain.FinanceEntry, float64, error) {
	entries, err := s.store.ListFinanceEntries(ctx, period)
	if err != nil {
		return nil, 0, err
	}

	var balance float64
	for _, e := range entries {
		balance += e.Signed()
	}
	return entries, balance, nil
}

func (s *FinanceService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteFinanceEntry(ctx, id)
}
