package cashback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talx-hub/gopher-cashback/internal/erp"
	"github.com/talx-hub/gopher-cashback/internal/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/customer"
	modelledger "github.com/talx-hub/gopher-cashback/internal/model/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
)

type fakeParameters struct {
	mu sync.Mutex
	p  parameters.Parameters
}

func (f *fakeParameters) Get(_ context.Context) (parameters.Parameters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.p, nil
}

func (f *fakeParameters) Update(_ context.Context, patch parameters.Patch) (parameters.Parameters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.p = patch.Apply(f.p)
	return f.p, nil
}

// memStore mirrors the customer and ledger repositories in memory.
type memStore struct {
	customers map[string]customer.Customer
	balances  map[string]model.Amount
	orders    map[string]order.Order
	txs       map[string][]modelledger.Transaction
	commitErr error
	mu        sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[string]customer.Customer),
		balances:  make(map[string]model.Amount),
		orders:    make(map[string]order.Order),
		txs:       make(map[string][]modelledger.Transaction),
	}
}

func (m *memStore) seed(partnerID string, balance model.Amount) customer.Customer {
	c, _ := m.FindOrCreate(context.Background(), partnerID)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[c.Wallet.ID] = balance
	c.Wallet.Balance = balance
	return c
}

func (m *memStore) FindOrCreate(_ context.Context, partnerID string) (customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[partnerID]
	if !ok {
		c = customer.Customer{
			ID:              uuid.NewString(),
			ExternalPartyID: partnerID,
			Wallet:          customer.Wallet{ID: uuid.NewString()},
		}
		m.customers[partnerID] = c
	}
	c.Wallet.Balance = m.balances[c.Wallet.ID]
	return c, nil
}

func (m *memStore) FindByExternalID(_ context.Context, partnerID string) (customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[partnerID]
	if !ok {
		return customer.Customer{}, serviceerrs.ErrCustomerNotFound
	}
	c.Wallet.Balance = m.balances[c.Wallet.ID]
	return c, nil
}

func (m *memStore) CommitOrder(_ context.Context, c order.Commit) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return order.Order{}, m.commitErr
	}
	if o, ok := m.orders[c.RemoteOrderID]; ok {
		return o, nil
	}
	updated, err := ledger.Apply(m.balances[c.WalletID], c.Transactions)
	if err != nil {
		return order.Order{}, err
	}
	o := order.Order{
		CreatedAt:       time.Now(),
		ID:              uuid.NewString(),
		RemoteOrderID:   c.RemoteOrderID,
		CustomerID:      c.CustomerID,
		AppliedCashback: c.AppliedCashback,
		NetAmount:       c.NetAmount,
	}
	for _, tx := range c.Transactions {
		tx.ID = uuid.NewString()
		tx.WalletID = c.WalletID
		tx.OrderID = o.ID
		o.Transactions = append(o.Transactions, tx)
	}
	m.txs[c.WalletID] = append(m.txs[c.WalletID], o.Transactions...)
	m.balances[c.WalletID] = updated
	m.orders[c.RemoteOrderID] = o
	return o, nil
}

func (m *memStore) ListTransactions(_ context.Context, walletID string) ([]modelledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]modelledger.Transaction(nil), m.txs[walletID]...), nil
}

func (m *memStore) balance(partnerID string) model.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[m.customers[partnerID].Wallet.ID]
}

func (m *memStore) customerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers)
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type fakeLocker struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func (f *fakeLocker) LockWallet(_ context.Context, walletID string) (func(), error) {
	f.mu.Lock()
	if f.locks == nil {
		f.locks = make(map[string]*sync.Mutex)
	}
	l, ok := f.locks[walletID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[walletID] = l
	}
	f.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}

type fakeGateway struct {
	partners  map[string]bool
	createErr error
	created   []order.RemoteOrder
	delay     time.Duration
	seq       int
	mu        sync.Mutex
}

func newFakeGateway(partners ...string) *fakeGateway {
	g := &fakeGateway{partners: make(map[string]bool)}
	for _, p := range partners {
		g.partners[p] = true
	}
	return g
}

func (g *fakeGateway) FindBusinessPartner(_ context.Context, id string) (erp.BusinessPartner, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.partners[id] {
		return erp.BusinessPartner{}, false, nil
	}
	return erp.BusinessPartner{ID: id}, true, nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, o order.RemoteOrder) (order.CreatedOrder, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return order.CreatedOrder{}, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return order.CreatedOrder{}, g.createErr
	}
	g.seq++
	g.created = append(g.created, o)
	return order.CreatedOrder{
		SalesOrder:              fmt.Sprintf("%d", 4700+g.seq),
		SalesOrderType:          o.OrderType,
		PurchaseOrderByCustomer: o.PartnerID,
		SoldToParty:             o.SoldToParty,
		TotalNetAmount:          o.TotalNetAmount,
		Items:                   o.Items,
	}, nil
}

func (g *fakeGateway) createdCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.created)
}

type fakeNotifier struct {
	wallets []string
	mu      sync.Mutex
}

func (f *fakeNotifier) BalanceUpdated(_ context.Context, walletID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets = append(f.wallets, walletID)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.wallets)
}
