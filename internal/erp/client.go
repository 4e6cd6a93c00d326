// Package erp talks to the sales order and business partner OData services
// of the remote order management system.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
	"github.com/talx-hub/gopher-cashback/internal/utils/logger"
	"github.com/talx-hub/gopher-cashback/internal/utils/semaphore"
)

const (
	partnerEntitySet    = "A_BusinessPartner"
	salesOrderEntitySet = "A_SalesOrder"
)

type Options struct {
	BaseURL       string
	User          string
	Password      string
	Timeout       time.Duration
	MaxConcurrent uint64
	CacheSize     int
}

type HTTPClient struct {
	client   http.Client
	sema     *semaphore.Semaphore
	partners *lru.Cache[string, BusinessPartner]
	baseURL  *url.URL
	user     string
	password string
}

func New(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ERP base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ERP base URL %q: scheme and host required", opts.BaseURL)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = model.DefaultPartnerCacheSize
	}
	partners, err := lru.New[string, BusinessPartner](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create partner cache: %w", err)
	}
	if opts.MaxConcurrent == 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = model.DefaultERPTimeout
	}

	return &HTTPClient{
		client:   http.Client{Timeout: opts.Timeout},
		sema:     semaphore.New(opts.MaxConcurrent),
		partners: partners,
		baseURL:  base,
		user:     opts.User,
		password: opts.Password,
	}, nil
}

// FindBusinessPartner reports false when the ERP does not know the partner.
// Found partners are cached, misses are not.
func (c *HTTPClient) FindBusinessPartner(ctx context.Context, id string,
) (BusinessPartner, bool, error) {
	if bp, ok := c.partners.Get(id); ok {
		return bp, true, nil
	}

	key := fmt.Sprintf("%s('%s')", partnerEntitySet, strings.ReplaceAll(id, "'", "''"))
	resp, body, err := c.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return BusinessPartner{}, false, fmt.Errorf("failed to request business partner %s: %w", id, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var data envelope[BusinessPartner]
		if err = decode(resp, body, &data); err != nil {
			return BusinessPartner{}, false, err
		}
		c.partners.Add(id, data.D)
		return data.D, true, nil
	case http.StatusNotFound:
		return BusinessPartner{}, false, nil
	}
	return BusinessPartner{}, false, unexpectedStatus(resp, body)
}

func (c *HTTPClient) CreateOrder(ctx context.Context, o order.RemoteOrder,
) (order.CreatedOrder, error) {
	payload, err := json.Marshal(salesOrderRequest{
		SalesOrderType:          o.OrderType,
		PurchaseOrderByCustomer: o.PartnerID,
		SoldToParty:             o.SoldToParty,
		TotalNetAmount:          o.TotalNetAmount,
		Items:                   o.Items,
	})
	if err != nil {
		return order.CreatedOrder{}, fmt.Errorf("failed to encode sales order: %w", err)
	}

	resp, body, err := c.do(ctx, http.MethodPost, salesOrderEntitySet, payload)
	if err != nil {
		return order.CreatedOrder{}, fmt.Errorf("failed to send sales order: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var data envelope[salesOrderResponse]
		if err = decode(resp, body, &data); err != nil {
			return order.CreatedOrder{}, err
		}
		if data.D.SalesOrder == "" {
			return order.CreatedOrder{}, errors.New("ERP returned a sales order without id")
		}
		return data.D.toCreated(), nil
	case http.StatusTooManyRequests:
		return order.CreatedOrder{}, tooManyRequests(resp)
	}
	return order.CreatedOrder{}, unexpectedStatus(resp, body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte,
) (*http.Response, []byte, error) {
	if err := c.sema.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	defer c.sema.Release()

	u := c.baseURL.JoinPath(path)
	q := u.Query()
	q.Set("$format", "json")
	u.RawQuery = q.Encode()

	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create the request: %w", err)
	}
	request.Header.Set("Accept", model.ContentTypeJSON)
	if payload != nil {
		request.Header.Set(model.HeaderContentType, model.ContentTypeJSON)
	}
	if c.user != "" {
		request.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(request)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request to ERP: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log := logger.FromContext(ctx)
			log.LogAttrs(
				ctx,
				slog.LevelError,
				"failed to close the response body",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read the body: %w", err)
	}
	return resp, body, nil
}

func decode(resp *http.Response, body []byte, v any) error {
	if ct := resp.Header.Get(model.HeaderContentType); !strings.HasPrefix(ct, model.ContentTypeJSON) {
		return fmt.Errorf("unexpected content type %s", ct)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("response decoding error: %w", err)
	}
	return nil
}

func tooManyRequests(resp *http.Response) error {
	retryAfter := time.Duration(0)
	if ra, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		retryAfter = time.Duration(ra) * time.Second
	}
	return &serviceerrs.TooManyRequestsError{RetryAfter: retryAfter}
}

func unexpectedStatus(resp *http.Response, body []byte) error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Errorf("unexpected status: %d\nBody: %s", resp.StatusCode, string(body))
}
