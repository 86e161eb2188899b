package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phillip/event-registration-go/payments"
)

const (
	DefaultBaseURL = "https://api-checkout.cinetpay.com/v2"

	checkoutCreated = "201"
	maxErrorBody    = 4 << 10
)

type Config struct {
	APIKey    string
	SiteID    string
	BaseURL   string
	NotifyURL string // webhook callback, usually <backend>/api/payment/notify
	Timeout   time.Duration
}

// CinetPay talks to the CinetPay checkout API.
type CinetPay struct {
	cfg    Config
	client *http.Client
}

func NewCinetPay(cfg Config, client *http.Client) *CinetPay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &CinetPay{cfg: cfg, client: client}
}

type paymentRequest struct {
	APIKey              string `json:"apikey"`
	SiteID              string `json:"site_id"`
	TransactionID       string `json:"transaction_id"`
	Amount              int64  `json:"amount"`
	Currency            string `json:"currency"`
	AlternativeCurrency string `json:"alternative_currency"`
	Description         string `json:"description"`
	CustomerID          string `json:"customer_id"`
	CustomerName        string `json:"customer_name"`
	CustomerSurname     string `json:"customer_surname"`
	CustomerEmail       string `json:"customer_email"`
	CustomerPhoneNumber string `json:"customer_phone_number"`
	CustomerAddress     string `json:"customer_address"`
	CustomerCity        string `json:"customer_city"`
	CustomerState       string `json:"customer_state"`
	CustomerCountry     string `json:"customer_country"`
	CustomerZipCode     string `json:"customer_zip_code"`
	NotifyURL           string `json:"notify_url"`
	ReturnURL           string `json:"return_url"`
	CancelURL           string `json:"cancel_url"`
	Channels            string `json:"channels"`
	Lang                string `json:"lang"`
	Metadata            string `json:"metadata"`
}

type paymentResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		PaymentToken string `json:"payment_token"`
		PaymentURL   string `json:"payment_url"`
	} `json:"data"`
}

type checkRequest struct {
	APIKey        string `json:"apikey"`
	SiteID        string `json:"site_id"`
	TransactionID string `json:"transaction_id"`
}

type checkResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		Status        string      `json:"status"`
		PaymentMethod string      `json:"payment_method"`
		Amount        json.Number `json:"amount"`
	} `json:"data"`
}

// CreateCheckout opens a hosted payment page for one transaction.
func (g *CinetPay) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, payments.NewGatewayError("encode checkout metadata", err)
	}
	body := paymentRequest{
		APIKey:              g.cfg.APIKey,
		SiteID:              g.cfg.SiteID,
		TransactionID:       req.TransactionID,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Description:         req.Description,
		CustomerID:          req.Customer.ID,
		CustomerName:        req.Customer.Name,
		CustomerSurname:     req.Customer.Surname,
		CustomerEmail:       req.Customer.Email,
		CustomerPhoneNumber: req.Customer.Phone,
		CustomerAddress:     req.Customer.Address,
		CustomerCity:        req.Customer.City,
		CustomerState:       req.Customer.State,
		CustomerCountry:     req.Customer.Country,
		CustomerZipCode:     req.Customer.Zip,
		NotifyURL:           g.cfg.NotifyURL,
		ReturnURL:           req.ReturnURL,
		CancelURL:           req.CancelURL,
		Channels:            "ALL",
		Lang:                req.Language,
		Metadata:            string(meta),
	}

	var resp paymentResponse
	if err := g.post(ctx, "/payment", body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != checkoutCreated || resp.Data == nil || resp.Data.PaymentURL == "" {
		return nil, payments.NewGatewayError("payment gateway rejected the checkout",
			fmt.Errorf("checkout rejected: code=%q message=%q", resp.Code, resp.Message))
	}
	return &payments.CheckoutSession{
		PaymentURL:   resp.Data.PaymentURL,
		PaymentToken: resp.Data.PaymentToken,
	}, nil
}

// VerifyTransaction asks CinetPay for the authoritative status of a
// transaction. A response without a status is an error, not a refusal.
func (g *CinetPay) VerifyTransaction(ctx context.Context, transactionID string) (*payments.Verification, error) {
	var resp checkResponse
	err := g.post(ctx, "/payment/check", checkRequest{
		APIKey:        g.cfg.APIKey,
		SiteID:        g.cfg.SiteID,
		TransactionID: transactionID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Status == "" {
		return nil, payments.NewGatewayError("payment gateway returned no transaction status",
			fmt.Errorf("verification returned no status: code=%q message=%q", resp.Code, resp.Message))
	}

	v := &payments.Verification{
		Status:        strings.ToUpper(resp.Data.Status),
		PaymentMethod: resp.Data.PaymentMethod,
	}
	if n, err := resp.Data.Amount.Int64(); err == nil {
		v.Amount = n
	}
	return v, nil
}

// post sends a JSON body and decodes the JSON answer. CinetPay reports
// business refusals in the body, sometimes alongside 4xx statuses, so those
// bodies are still decoded.
func (g *CinetPay) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return payments.NewGatewayError("encode gateway request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return payments.NewGatewayError("build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return payments.NewGatewayError("gateway request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return payments.NewGatewayError(
			fmt.Sprintf("gateway returned %s", resp.Status), errors.New(strings.TrimSpace(string(snippet))))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return payments.NewGatewayError(fmt.Sprintf("decode gateway response (%s)", resp.Status), err)
	}
	return nil
}
