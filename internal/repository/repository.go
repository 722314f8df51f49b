// Package repository implémente les ports de services sur ScyllaDB (gocql).
package repository

import (
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"phoneshop_back_end/internal/services"
)

// parseID convertit un identifiant texte. Un identifiant mal formé ne peut
// désigner aucune ligne : il est traité comme introuvable.
func parseID(kind, id string) (gocql.UUID, error) {
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}, fmt.Errorf("%s %q: %w", kind, id, services.ErrNotFound)
	}
	return u, nil
}

// notFound traduit gocql.ErrNotFound en services.ErrNotFound.
func notFound(kind, id string, err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", kind, id, services.ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", kind, id, err)
}

func newID() string {
	return gocql.TimeUUID().String()
}
