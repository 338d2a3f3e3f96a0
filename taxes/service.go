/*
service.go - Stateful facade over the calculation core

PURPOSE:
  Service holds one Configuration as the current default so callers can set
  it once (e.g. from the settings screen) instead of threading it through
  every call. The free functions at the bottom serve stateless callers.

CONCURRENCY:
  The stored configuration is replaced wholesale under a mutex (atomic
  swap, copy-on-write): readers see either the old or the new value in
  full, never a half-updated one. Calculations take a snapshot first, so
  a concurrent update cannot change rates mid-calculation.

SEE ALSO:
  - calculator.go: The underlying pure functions
  - config.go: Merge semantics for partial updates
*/
package taxes

import (
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE FACADE
// =============================================================================

// Service wraps the calculation core with a mutable default configuration.
type Service struct {
	mu  sync.RWMutex
	cfg Configuration
}

// NewService creates a facade with the given default configuration.
func NewService(cfg Configuration) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// NewDefaultService creates a facade with DefaultConfiguration.
func NewDefaultService() *Service {
	return &Service{cfg: DefaultConfiguration()}
}

// Configuration returns a copy of the current default. Mutating the copy
// does not affect the facade.
func (s *Service) Configuration() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfiguration merges the partial update into the current default
// and swaps it in atomically. An invalid merge leaves the stored
// configuration unchanged.
func (s *Service) UpdateConfiguration(u ConfigUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, err := s.cfg.Merge(u)
	if err != nil {
		return err
	}
	s.cfg = merged
	return nil
}

// CalculateForAmount runs a single-amount calculation against a snapshot
// of the current default configuration.
func (s *Service) CalculateForAmount(amount decimal.Decimal) Result {
	return CalculateForAmount(amount, s.Configuration())
}

// CalculateForItems runs a cart calculation against a snapshot of the
// current default configuration.
func (s *Service) CalculateForItems(items []LineItem) (Result, error) {
	return CalculateForItems(items, s.Configuration())
}

// ReverseCalculation decomposes a known amount against a snapshot of the
// current default configuration.
func (s *Service) ReverseCalculation(amount decimal.Decimal) Result {
	return ReverseCalculation(amount, s.Configuration())
}

// =============================================================================
// STATELESS HELPERS
// =============================================================================

// CalculateTaxes computes the breakdown for one amount. A nil cfg uses
// DefaultConfiguration.
func CalculateTaxes(amount decimal.Decimal, cfg *Configuration) Result {
	return CalculateForAmount(amount, orDefault(cfg))
}

// CalculateCartTaxes computes the aggregate breakdown for a cart. A nil
// cfg uses DefaultConfiguration.
func CalculateCartTaxes(items []LineItem, cfg *Configuration) (Result, error) {
	return CalculateForItems(items, orDefault(cfg))
}

// GetTaxAmount returns the taxes contained in a tax-inclusive total at the
// default VAT rate.
func GetTaxAmount(total decimal.Decimal) decimal.Decimal {
	cfg := DefaultConfiguration()
	cfg.TaxIncludedInPrice = true
	return CalculateForAmount(total, cfg).TotalTaxes
}

// GetSubtotal returns the pre-tax portion of a tax-inclusive total at the
// default VAT rate.
func GetSubtotal(total decimal.Decimal) decimal.Decimal {
	cfg := DefaultConfiguration()
	cfg.TaxIncludedInPrice = true
	return CalculateForAmount(total, cfg).Subtotal
}

func orDefault(cfg *Configuration) Configuration {
	if cfg == nil {
		return DefaultConfiguration()
	}
	return *cfg
}
