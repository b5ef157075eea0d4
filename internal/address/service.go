package address

import (
	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// Service resolves the shipping address for a checkout.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve picks the shipping address: an explicit id must belong to the
// user; without one the user's primary address is used. A missing
// primary is a user-actionable condition, not a system fault.
func (s *Service) Resolve(userID int, addressID *int64) (*Address, error) {
	if addressID != nil {
		a, err := s.repo.GetByID(userID, *addressID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, apperr.New(apperr.NotFound, apperr.CodeAddressNotFound, "address not found")
		}
		return a, nil
	}

	a, err := s.repo.GetPrimary(userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.New(apperr.Validation, apperr.CodeNoPrimaryAddress,
			"no primary address set; add a shipping address first")
	}
	return a, nil
}
