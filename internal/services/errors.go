package services

import "errors"

var (
	ErrInvalidInput       = errors.New("données invalides")
	ErrNotFound           = errors.New("introuvable")
	ErrConflict           = errors.New("conflit")
	ErrForbidden          = errors.New("accès refusé")
	ErrUnauthorized       = errors.New("non authentifié")
	ErrInvalidTransition  = errors.New("transition de statut non autorisée")
	ErrEmptyCart          = errors.New("panier vide")
	ErrPaymentUnavailable = errors.New("moyen de paiement indisponible")
)
