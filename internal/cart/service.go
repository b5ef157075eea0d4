package cart

import (
	"github.com/clorindastore/storefront-backend/internal/apperr"
	"github.com/clorindastore/storefront-backend/internal/catalog"
)

// Service handles the staging cart. The snapshot it hands out always
// reflects live catalog prices; nothing is frozen until checkout.
type Service struct {
	repo     Repository
	variants VariantReader
}

// VariantReader is the slice of the catalog the cart needs when a line
// references a variant.
type VariantReader interface {
	GetVariant(variantID int64) (*catalog.Variant, error)
}

func NewService(repo Repository, variants VariantReader) *Service {
	return &Service{repo: repo, variants: variants}
}

func (s *Service) Snapshot(userID int) ([]SnapshotItem, error) {
	return s.repo.Snapshot(userID)
}

func (s *Service) SetItem(userID int, productID int64, variantID *int64, qty int) ([]SnapshotItem, error) {
	if productID <= 0 {
		return nil, apperr.New(apperr.Validation, apperr.CodeInvalidProduct, "invalid product id")
	}
	if variantID != nil {
		v, err := s.variants.GetVariant(*variantID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.ProductID != productID {
			return nil, apperr.New(apperr.NotFound, apperr.CodeVariantNotFound, "product variant not found")
		}
	}
	if err := s.repo.UpsertItem(userID, productID, variantID, qty); err != nil {
		return nil, err
	}
	return s.repo.Snapshot(userID)
}

func (s *Service) RemoveItem(userID int, productID int64, variantID *int64) ([]SnapshotItem, error) {
	if err := s.repo.RemoveItem(userID, productID, variantID); err != nil {
		return nil, err
	}
	return s.repo.Snapshot(userID)
}
