package ledger

import "errors"

// Sentinel failures surfaced by the ledger. Controllers map these to HTTP
// statuses; anything else is a persistence failure and rolls back whole.
var (
	// ErrLotUnavailable: the lot is missing or no longer Disponible at lock
	// time. No state change has occurred.
	ErrLotUnavailable = errors.New("lot is not available for purchase")

	// ErrPurchaseNotFound covers both a missing purchase and a purchase owned
	// by another client, so non-owners cannot probe for existence.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrPurchaseSettled: the purchase is already Completado and accepts no
	// further payments.
	ErrPurchaseSettled = errors.New("purchase is already fully paid")
)
