package redisx

import "time"

const (
	// Discount cache: pos:discount:{code} -> discount JSON
	KeyDiscountCode = "pos:discount:%s"

	// Active table status for displays: pos:table:{session_id} -> {"label": "...", "status": "...", "subtotal": "..."}
	KeyTableStatus = "pos:table:%s"
)

var (
	TTLDiscount    = 5 * time.Minute
	TTLTableStatus = 12 * time.Hour
)

// Printed receipts: pos:printed:{event_id} -> "1"
const KeyPrinted = "pos:printed:%s"

var TTLPrinted = 24 * time.Hour
