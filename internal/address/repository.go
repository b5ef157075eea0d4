package address

// Repository defines the address reads checkout needs. Full address
// CRUD lives with the account service and is not part of this module.
// Both methods return nil without an error when no row matches.
type Repository interface {
	GetByID(userID int, addressID int64) (*Address, error)
	GetPrimary(userID int) (*Address, error)
}
