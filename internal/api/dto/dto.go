package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/customer"
	"github.com/talx-hub/gopher-cashback/internal/model/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
)

type CashbackUsage struct {
	AppliedCashback int64 `json:"applied_cashback"`
}

// SalesOrderRequest keeps the ERP field names, the cashback part goes under "Order".
type SalesOrderRequest struct {
	Order                   *CashbackUsage   `json:"Order,omitempty"`
	SalesOrderType          string           `json:"SalesOrderType"`
	PurchaseOrderByCustomer string           `json:"PurchaseOrderByCustomer"`
	SoldToParty             string           `json:"SoldToParty"`
	TotalNetAmount          decimal.Decimal  `json:"TotalNetAmount"`
	Items                   []order.LineItem `json:"to_Item"`
}

func (r *SalesOrderRequest) IsValid() error {
	var errs []error
	if r.SalesOrderType == "" {
		errs = append(errs, errors.New("SalesOrderType is empty"))
	}
	if r.PurchaseOrderByCustomer == "" {
		errs = append(errs, errors.New("PurchaseOrderByCustomer is empty"))
	}
	if r.SoldToParty == "" {
		errs = append(errs, errors.New("SoldToParty is empty"))
	}
	if !r.TotalNetAmount.IsPositive() {
		errs = append(errs, errors.New("TotalNetAmount must be positive"))
	} else if _, err := model.FromDecimal(r.TotalNetAmount); err != nil {
		errs = append(errs, fmt.Errorf("TotalNetAmount: %w", err))
	}
	if len(r.Items) == 0 {
		errs = append(errs, errors.New("to_Item is empty"))
	}
	for i, item := range r.Items {
		if item.Material == "" {
			errs = append(errs, fmt.Errorf("to_Item[%d]: Material is empty", i))
		}
		if !item.RequestedQuantity.IsPositive() {
			errs = append(errs, fmt.Errorf("to_Item[%d]: RequestedQuantity must be positive", i))
		}
	}
	if r.Order != nil && r.Order.AppliedCashback < 0 {
		errs = append(errs, errors.New("applied_cashback is negative"))
	}
	return errors.Join(errs...)
}

func (r *SalesOrderRequest) ToModel() *order.CreateRequest {
	req := &order.CreateRequest{
		OrderType:       r.SalesOrderType,
		ExternalPartyID: r.PurchaseOrderByCustomer,
		SoldToParty:     r.SoldToParty,
		TotalNetAmount:  r.TotalNetAmount,
		Items:           r.Items,
	}
	if r.Order != nil {
		req.AppliedCashback = model.Amount(r.Order.AppliedCashback)
	}
	return req
}

type ParametersPatch struct {
	IsCashbackActive *bool            `json:"is_cashback_active"`
	RedemptionLimit  *decimal.Decimal `json:"cashback_redemption_limit"`
	ReturnRate       *decimal.Decimal `json:"cashback_return_rate"`
}

func (p *ParametersPatch) IsValid() error {
	if p.IsCashbackActive == nil && p.RedemptionLimit == nil && p.ReturnRate == nil {
		return errors.New("nothing to update")
	}
	return errors.Join(
		checkFraction("cashback_redemption_limit", p.RedemptionLimit),
		checkFraction("cashback_return_rate", p.ReturnRate),
	)
}

func checkFraction(name string, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be within [0, 1], got %s", name, v)
	}
	return nil
}

func (p *ParametersPatch) ToModel() parameters.Patch {
	return parameters.Patch{
		IsCashbackActive: p.IsCashbackActive,
		RedemptionLimit:  p.RedemptionLimit,
		ReturnRate:       p.ReturnRate,
	}
}

type TransactionResponse struct {
	CreatedAt time.Time              `json:"created_at"`
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	Type      ledger.TransactionType `json:"type"`
	Amount    int64                  `json:"amount"`
}

// WalletResponse amounts are in cents.
type WalletResponse struct {
	BusinessPartnerID string                `json:"business_partner_id"`
	WalletID          string                `json:"wallet_id"`
	Transactions      []TransactionResponse `json:"transactions"`
	Balance           int64                 `json:"balance"`
}

func NewWalletResponse(c customer.Customer, txs []ledger.Transaction) WalletResponse {
	resp := WalletResponse{
		BusinessPartnerID: c.ExternalPartyID,
		WalletID:          c.Wallet.ID,
		Balance:           c.Wallet.Balance.Cents(),
		Transactions:      make([]TransactionResponse, 0, len(txs)),
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			CreatedAt: tx.CreatedAt,
			ID:        tx.ID,
			OrderID:   tx.OrderID,
			Type:      tx.Type,
			Amount:    tx.Amount.Cents(),
		})
	}
	return resp
}
