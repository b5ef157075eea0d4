package address

import (
	"testing"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

type stubRepo struct {
	byID    map[int64]*Address
	primary *Address
}

func (r *stubRepo) GetByID(userID int, addressID int64) (*Address, error) {
	a, ok := r.byID[addressID]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return a, nil
}

func (r *stubRepo) GetPrimary(userID int) (*Address, error) {
	if r.primary != nil && r.primary.UserID == userID {
		return r.primary, nil
	}
	return nil, nil
}

func TestResolveExplicitID(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*Address{7: {ID: 7, UserID: 1}}}
	svc := NewService(repo)

	id := int64(7)
	a, err := svc.Resolve(1, &id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 7 {
		t.Fatalf("expected address 7, got %d", a.ID)
	}
}

func TestResolveForeignAddressRejected(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*Address{7: {ID: 7, UserID: 2}}}
	svc := NewService(repo)

	id := int64(7)
	_, err := svc.Resolve(1, &id)
	if apperr.CodeOf(err) != apperr.CodeAddressNotFound {
		t.Fatalf("expected %s, got %v", apperr.CodeAddressNotFound, err)
	}
}

func TestResolvePrimaryFallback(t *testing.T) {
	repo := &stubRepo{primary: &Address{ID: 3, UserID: 1, IsPrimary: true}}
	svc := NewService(repo)

	a, err := svc.Resolve(1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 3 {
		t.Fatalf("expected primary address 3, got %d", a.ID)
	}
}

func TestResolveNoPrimary(t *testing.T) {
	svc := NewService(&stubRepo{})

	_, err := svc.Resolve(1, nil)
	if apperr.CodeOf(err) != apperr.CodeNoPrimaryAddress {
		t.Fatalf("expected %s, got %v", apperr.CodeNoPrimaryAddress, err)
	}
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("missing primary address must be user-actionable, got kind %v", apperr.KindOf(err))
	}
}
