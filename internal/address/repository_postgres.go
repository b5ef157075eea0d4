package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const selectAddress = `SELECT id, user_id, recipient_name, phone, address_line,
	province_id, city_id, subdistrict_id,
	province_name, city_name, subdistrict_name, postal_code, is_primary
	FROM addresses`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(userID int, addressID int64) (*Address, error) {
	return r.get(selectAddress+` WHERE id = $1 AND user_id = $2`, addressID, userID)
}

func (r *PostgresRepository) GetPrimary(userID int) (*Address, error) {
	return r.get(selectAddress+` WHERE user_id = $1 AND is_primary LIMIT 1`, userID)
}

func (r *PostgresRepository) get(query string, args ...any) (*Address, error) {
	var a Address
	err := r.db.QueryRow(query, args...).Scan(
		&a.ID, &a.UserID, &a.RecipientName, &a.Phone, &a.AddressLine,
		&a.ProvinceID, &a.CityID, &a.SubdistrictID,
		&a.ProvinceName, &a.CityName, &a.SubdistrictName, &a.PostalCode, &a.IsPrimary,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
