package payment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	chargesPath      = "/v1/charges"
	transactionsPath = "/v1/transactions/"

	statusSettled = "settled"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default pooled HTTP client, e.g. in tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the gateway at baseURL.
func NewClient(baseURL string, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type chargeRequest struct {
	PatronID  string `json:"patron_id"`
	Amount    int64  `json:"amount"`
	Purpose   string `json:"purpose"`
	Reference string `json:"reference"`
}

type chargeResponse struct {
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
}

type transactionResponse struct {
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
}

// ChargeFine charges the fine amount to the patron.
func (c *Client) ChargeFine(ctx context.Context, charge FineCharge) (Receipt, error) {
	return c.charge(ctx, charge.IdempotencyKey(), chargeRequest{
		PatronID:  charge.PatronID,
		Amount:    int64(charge.Amount),
		Purpose:   "fine",
		Reference: charge.FineID,
	})
}

// ChargeDigitalExtension charges the extension fee to the patron.
func (c *Client) ChargeDigitalExtension(ctx context.Context, charge ExtensionCharge) (Receipt, error) {
	return c.charge(ctx, charge.IdempotencyKey(), chargeRequest{
		PatronID:  charge.PatronID,
		Amount:    int64(charge.Amount),
		Purpose:   "digital_extension",
		Reference: charge.BorrowID,
	})
}

// TransactionSettled reports whether the gateway considers the transaction settled.
func (c *Client) TransactionSettled(ctx context.Context, transactionRef string) (bool, error) {
	if transactionRef == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+transactionsPath+url.PathEscape(transactionRef), nil)
	if err != nil {
		return false, errors.Join(ErrGatewayFailure, err)
	}

	var out transactionResponse

	status, err := c.do(req, &out)
	if status == http.StatusNotFound {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return out.Status == statusSettled, nil
}

func (c *Client) charge(ctx context.Context, idempotencyKey string, body chargeRequest) (Receipt, error) {
	payload, err := jsonAPI.Marshal(body)
	if err != nil {
		return Receipt{}, errors.Join(ErrGatewayFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chargesPath, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, errors.Join(ErrGatewayFailure, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	var out chargeResponse

	if _, err = c.do(req, &out); err != nil {
		return Receipt{}, err
	}

	if out.TransactionRef == "" {
		return Receipt{}, fmt.Errorf("%w: empty transaction reference", ErrGatewayFailure)
	}

	if out.Status != "" && out.Status != statusSettled {
		return Receipt{}, fmt.Errorf("%w: charge %s is %s", ErrGatewayFailure, out.TransactionRef, out.Status)
	}

	return Receipt{TransactionRef: out.TransactionRef}, nil
}

// do sends req and decodes a 2xx JSON body into out. It returns the status code if a response arrived.
func (c *Client) do(req *http.Request, out any) (int, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Join(ErrGatewayFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("%w: %s %s returned %s", ErrGatewayFailure, req.Method, req.URL.Path, resp.Status)
	}

	if err = jsonAPI.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Join(ErrGatewayFailure, err)
	}

	return resp.StatusCode, nil
}
