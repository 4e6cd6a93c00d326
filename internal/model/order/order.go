package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/ledger"
)

type LineItem struct {
	Material              string          `json:"Material"`
	RequestedQuantity     decimal.Decimal `json:"RequestedQuantity"`
	RequestedQuantityUnit string          `json:"RequestedQuantityUnit,omitempty"`
}

// CreateRequest is an inbound sales order creation with an optional cashback redemption.
type CreateRequest struct {
	OrderType       string
	ExternalPartyID string
	SoldToParty     string
	TotalNetAmount  decimal.Decimal
	Items           []LineItem
	AppliedCashback model.Amount
}

// TotalCents is the order total in minor units, not rounded.
func (r *CreateRequest) TotalCents() decimal.Decimal {
	return r.TotalNetAmount.Mul(decimal.NewFromInt(model.CentsInUnit))
}

// NetAmount is the amount charged after the redemption. The total must fit
// model.Amount, see model.FromDecimal.
func (r *CreateRequest) NetAmount() model.Amount {
	return model.Amount(r.TotalCents().Round(0).IntPart()) - r.AppliedCashback
}

// RemoteOrder is what gets sent to the ERP.
type RemoteOrder struct {
	OrderType      string
	PartnerID      string
	SoldToParty    string
	TotalNetAmount decimal.Decimal
	Items          []LineItem
}

func (r *CreateRequest) ToRemote() RemoteOrder {
	return RemoteOrder{
		OrderType:      r.OrderType,
		PartnerID:      r.ExternalPartyID,
		SoldToParty:    r.SoldToParty,
		TotalNetAmount: r.TotalNetAmount,
		Items:          r.Items,
	}
}

// CreatedOrder is the sales order as the ERP returned it.
type CreatedOrder struct {
	SalesOrder              string          `json:"SalesOrder"`
	SalesOrderType          string          `json:"SalesOrderType"`
	PurchaseOrderByCustomer string          `json:"PurchaseOrderByCustomer"`
	SoldToParty             string          `json:"SoldToParty"`
	TotalNetAmount          decimal.Decimal `json:"TotalNetAmount"`
	TransactionCurrency     string          `json:"TransactionCurrency,omitempty"`
	Items                   []LineItem      `json:"to_Item,omitempty"`
}

// Order is the local record mirroring a remote sales order.
type Order struct {
	CreatedAt       time.Time            `json:"created_at"`
	ID              string               `json:"id"`
	RemoteOrderID   string               `json:"sales_order_id"`
	CustomerID      string               `json:"customer_id"`
	Transactions    []ledger.Transaction `json:"transactions"`
	AppliedCashback model.Amount         `json:"applied_cashback"`
	NetAmount       model.Amount         `json:"amount"`
}

// Commit carries everything the ledger needs to mirror a created remote order.
type Commit struct {
	RemoteOrderID   string
	CustomerID      string
	WalletID        string
	Transactions    []ledger.Transaction
	AppliedCashback model.Amount
	NetAmount       model.Amount
}
