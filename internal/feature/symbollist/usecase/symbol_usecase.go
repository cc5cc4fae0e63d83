// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stock_analyzer/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	FindActive(ctx context.Context, code string) (*entity.Symbol, error)
	Seed(ctx context.Context, symbols []entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveCodes returns the active codes in display order.
func (u *SymbolUsecase) ListActiveCodes(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveCodes(ctx)
}

// IsListed reports whether code (case-insensitive) is an active catalog entry.
func (u *SymbolUsecase) IsListed(ctx context.Context, code string) (bool, error) {
	code = entity.NormalizeCode(code)
	if code == "" {
		return false, nil
	}
	_, err := u.repo.FindActive(ctx, code)
	if errors.Is(err, ErrSymbolNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureDefaults seeds entity.DefaultSymbols. Running it again is a no-op.
func (u *SymbolUsecase) EnsureDefaults(ctx context.Context) error {
	if err := u.repo.Seed(ctx, entity.DefaultSymbols); err != nil {
		return fmt.Errorf("seed symbols: %w", err)
	}
	slog.Info("symbol catalog ready", "count", len(entity.DefaultSymbols))
	return nil
}
