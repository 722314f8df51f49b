package repository

import (
	"context"

	"github.com/gocql/gocql"

	"phoneshop_back_end/internal/models"
)

type AddressRepository struct {
	session *gocql.Session
}

func NewAddressRepository(session *gocql.Session) *AddressRepository {
	return &AddressRepository{session: session}
}

func (r *AddressRepository) Get(ctx context.Context, userID string) (*models.Address, error) {
	id, err := parseID("utilisateur", userID)
	if err != nil {
		return nil, err
	}
	a := models.Address{UserID: userID}
	err = r.session.Query(`SELECT street, city, state, zip_code, country FROM addresses WHERE user_id = ?`, id).
		WithContext(ctx).Scan(&a.Street, &a.City, &a.State, &a.ZipCode, &a.Country)
	if err != nil {
		return nil, notFound("adresse", userID, err)
	}
	return &a, nil
}

func (r *AddressRepository) Save(ctx context.Context, a *models.Address) error {
	id, err := parseID("utilisateur", a.UserID)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO addresses (user_id, street, city, state, zip_code, country) VALUES (?, ?, ?, ?, ?, ?)`,
		id, a.Street, a.City, a.State, a.ZipCode, a.Country).WithContext(ctx).Exec()
}
