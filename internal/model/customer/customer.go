package customer

import "github.com/talx-hub/gopher-cashback/internal/model"

type Wallet struct {
	ID      string       `json:"id"`
	Balance model.Amount `json:"balance"`
}

// Customer is the local mirror of an ERP business partner.
// A Customer is never handed out without its Wallet.
type Customer struct {
	ID              string `json:"id"`
	ExternalPartyID string `json:"business_partner_id"`
	Wallet          Wallet `json:"wallet"`
}
