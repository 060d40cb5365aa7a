package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"payments-dashboard/logger"
)

// Gateway call timeouts. Creation is allowed longer because the gateway
// provisions the collect request synchronously.
const (
	createTimeout = 30 * time.Second
	statusTimeout = 10 * time.Second
	signLifetime  = time.Hour
)

// Gateway failure classes. The engine maps each class to a distinct
// user-facing message; none may be treated as success.
const (
	GatewayTimeout           = "timeout"
	GatewayAuthFailure       = "auth-failure"
	GatewayServerError       = "server-error"
	GatewayMalformedResponse = "malformed-response"
)

// GatewayError is a classified failure of an outbound gateway call
type GatewayError struct {
	Class string
	Op    string
	Err   error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s (%s): %v", e.Op, e.Class, e.Err)
	}
	return fmt.Sprintf("gateway %s (%s)", e.Op, e.Class)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UserMessage returns the class-specific message surfaced to API clients
func (e *GatewayError) UserMessage() string {
	switch e.Class {
	case GatewayTimeout:
		return "Payment gateway timed out"
	case GatewayAuthFailure:
		return "Payment gateway rejected our credentials"
	case GatewayServerError:
		return "Payment gateway temporarily unavailable"
	case GatewayMalformedResponse:
		return "Payment gateway returned an unusable response"
	default:
		return "Payment gateway error"
	}
}

// GatewayStatus is the gateway's report of a collect request, as returned by
// the status-check endpoint
type GatewayStatus struct {
	Status            string   `json:"status"`
	Amount            *float64 `json:"amount"`
	TransactionAmount *float64 `json:"transaction_amount"`
	PaymentMode       *string  `json:"payment_mode"`
	PaymentDetails    *string  `json:"payment_details"`
	BankReference     *string  `json:"bank_reference"`
	PaymentMessage    *string  `json:"payment_message"`
	ErrorMessage      *string  `json:"error_message"`
	PaymentTime       *string  `json:"payment_time"`
	Gateway           *string  `json:"gateway"`
}

// GatewayClient talks to the external collect API. Every request carries a
// short-lived JWT sign as proof of origin plus the API key as bearer auth.
type GatewayClient struct {
	baseURL      string
	apiKey       string
	signKey      []byte
	schoolID     string
	createClient *http.Client
	statusClient *http.Client
}

func NewGatewayClient(baseURL, apiKey, signKey, schoolID string) *GatewayClient {
	return &GatewayClient{
		baseURL:      baseURL,
		apiKey:       apiKey,
		signKey:      []byte(signKey),
		schoolID:     schoolID,
		createClient: &http.Client{Timeout: createTimeout},
		statusClient: &http.Client{Timeout: statusTimeout},
	}
}

// Sign issues the gateway proof-of-origin token over the given claims,
// valid for one hour
func (c *GatewayClient) Sign(claims map[string]interface{}) (string, error) {
	mapClaims := jwt.MapClaims{
		"exp": time.Now().Add(signLifetime).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("sign gateway claims: %w", err)
	}
	return signed, nil
}

type createCollectRequest struct {
	SchoolID         string  `json:"school_id"`
	Amount           float64 `json:"amount"`
	CallbackURL      string  `json:"callback_url"`
	Sign             string  `json:"sign"`
	CollectRequestID string  `json:"collect_request_id"`
}

type createCollectResponse struct {
	CollectRequestURL string `json:"Collect_request_url"`
	PaymentURL        string `json:"payment_url"`
}

// CreateCollectRequest registers a collect request with the gateway and
// returns the hosted payment URL
func (c *GatewayClient) CreateCollectRequest(ctx context.Context, amount float64, callbackURL, collectID string) (string, error) {
	sign, err := c.Sign(map[string]interface{}{
		"school_id":          c.schoolID,
		"amount":             amount,
		"callback_url":       callbackURL,
		"collect_request_id": collectID,
	})
	if err != nil {
		return "", &GatewayError{Class: GatewayServerError, Op: "create-collect-request", Err: err}
	}

	payload := createCollectRequest{
		SchoolID:         c.schoolID,
		Amount:           amount,
		CallbackURL:      callbackURL,
		Sign:             sign,
		CollectRequestID: collectID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &GatewayError{Class: GatewayServerError, Op: "create-collect-request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-collect-request", bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Class: GatewayServerError, Op: "create-collect-request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.createClient.Do(req)
	if err != nil {
		return "", classifyTransportError("create-collect-request", err)
	}
	defer resp.Body.Close()

	if gerr := classifyStatusCode("create-collect-request", resp.StatusCode); gerr != nil {
		io.Copy(io.Discard, resp.Body)
		return "", gerr
	}

	var gwResp createCollectResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return "", &GatewayError{Class: GatewayMalformedResponse, Op: "create-collect-request", Err: err}
	}

	// The gateway has shipped both spellings of the URL field
	paymentURL := gwResp.CollectRequestURL
	if paymentURL == "" {
		paymentURL = gwResp.PaymentURL
	}
	if paymentURL == "" {
		return "", &GatewayError{Class: GatewayMalformedResponse, Op: "create-collect-request",
			Err: errors.New("payment URL not present in gateway response")}
	}

	return paymentURL, nil
}

// CheckStatus asks the gateway for its current view of a collect request
func (c *GatewayClient) CheckStatus(ctx context.Context, collectID string) (*GatewayStatus, error) {
	sign, err := c.Sign(map[string]interface{}{
		"school_id":          c.schoolID,
		"collect_request_id": collectID,
	})
	if err != nil {
		return nil, &GatewayError{Class: GatewayServerError, Op: "check-status", Err: err}
	}

	endpoint := fmt.Sprintf("%s/collect-request/%s?%s", c.baseURL, collectID, url.Values{
		"school_id": {c.schoolID},
		"sign":      {sign},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &GatewayError{Class: GatewayServerError, Op: "check-status", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.statusClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("check-status", err)
	}
	defer resp.Body.Close()

	if gerr := classifyStatusCode("check-status", resp.StatusCode); gerr != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, gerr
	}

	var status GatewayStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &GatewayError{Class: GatewayMalformedResponse, Op: "check-status", Err: err}
	}

	if status.Status == "" {
		return nil, &GatewayError{Class: GatewayMalformedResponse, Op: "check-status",
			Err: errors.New("status not present in gateway response")}
	}

	logger.Debug("Gateway status for %s: %s", collectID, status.Status)
	return &status, nil
}

func classifyTransportError(op string, err error) *GatewayError {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &GatewayError{Class: GatewayTimeout, Op: op, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &GatewayError{Class: GatewayTimeout, Op: op, Err: err}
	}
	return &GatewayError{Class: GatewayServerError, Op: op, Err: err}
}

func classifyStatusCode(op string, code int) *GatewayError {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &GatewayError{Class: GatewayAuthFailure, Op: op,
			Err: fmt.Errorf("gateway responded %d", code)}
	case code >= 500:
		return &GatewayError{Class: GatewayServerError, Op: op,
			Err: fmt.Errorf("gateway responded %d", code)}
	case code >= 300:
		// Unexpected but not an auth or 5xx problem; still a hard failure
		return &GatewayError{Class: GatewayServerError, Op: op,
			Err: fmt.Errorf("unexpected gateway status %d", code)}
	}
	return nil
}
