package erp

import (
	"github.com/shopspring/decimal"

	"github.com/talx-hub/gopher-cashback/internal/model/order"
)

type BusinessPartner struct {
	ID       string `json:"BusinessPartner"`
	FullName string `json:"BusinessPartnerFullName"`
	Category string `json:"BusinessPartnerCategory"`
}

// envelope is the OData v2 JSON payload wrapper.
type envelope[T any] struct {
	D T `json:"d"`
}

type salesOrderRequest struct {
	SalesOrderType          string           `json:"SalesOrderType"`
	PurchaseOrderByCustomer string           `json:"PurchaseOrderByCustomer"`
	SoldToParty             string           `json:"SoldToParty"`
	TotalNetAmount          decimal.Decimal  `json:"TotalNetAmount"`
	Items                   []order.LineItem `json:"to_Item"`
}

type salesOrderResponse struct {
	SalesOrder              string          `json:"SalesOrder"`
	SalesOrderType          string          `json:"SalesOrderType"`
	PurchaseOrderByCustomer string          `json:"PurchaseOrderByCustomer"`
	SoldToParty             string          `json:"SoldToParty"`
	TotalNetAmount          decimal.Decimal `json:"TotalNetAmount"`
	TransactionCurrency     string          `json:"TransactionCurrency"`
	Items                   struct {
		Results []order.LineItem `json:"results"`
	} `json:"to_Item"`
}

func (r salesOrderResponse) toCreated() order.CreatedOrder {
	return order.CreatedOrder{
		SalesOrder:              r.SalesOrder,
		SalesOrderType:          r.SalesOrderType,
		PurchaseOrderByCustomer: r.PurchaseOrderByCustomer,
		SoldToParty:             r.SoldToParty,
		TotalNetAmount:          r.TotalNetAmount,
		TransactionCurrency:     r.TransactionCurrency,
		Items:                   r.Items.Results,
	}
}
