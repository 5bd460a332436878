package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"podm-backend/internal/config"
)

// StripeClient covers the slice of the gateway API this service uses:
// one-off destination charges with an application fee, recurring
// subscriptions, and webhook signature verification.
type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentInput) (*PaymentIntent, error)
	CreateCustomer(ctx context.Context, userID string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerRef, methodRef string) error
	SetDefaultPaymentMethod(ctx context.Context, customerRef, methodRef string) error
	CreateSubscription(ctx context.Context, customerRef, priceRef string) (*GatewaySubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*GatewaySubscription, error)
	ResumeSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error)
	VerifyWebhookSignature(signatureHeader string, body []byte) error
}

type CreatePaymentIntentInput struct {
	Amount         int64 // gross, minor units
	Currency       string
	ApplicationFee int64  // platform share, minor units
	PayeeAccount   string // connected account receiving the remainder
	CustomerRef    string
	// correlation metadata echoed back in webhook events
	TransactionID string
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type GatewaySubscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CancelAt           int64  `json:"cancel_at"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
}

type stripeClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	secretKey     string
	webhookSecret string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    stripeCfg.BaseApiURL,
		secretKey:     stripeCfg.SecretKey,
		webhookSecret: stripeCfg.WebhookSecret,
	}
}

func (c *stripeClientImpl) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentInput) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.Amount, 10))
	form.Set("currency", in.Currency)
	form.Set("application_fee_amount", strconv.FormatInt(in.ApplicationFee, 10))
	form.Set("transfer_data[destination]", in.PayeeAccount)
	form.Set("metadata[transaction_id]", in.TransactionID)
	if in.CustomerRef != "" {
		form.Set("customer", in.CustomerRef)
	}

	var intent PaymentIntent
	if err := c.postForm(ctx, "/v1/payment_intents", form, &intent); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &intent, nil
}

func (c *stripeClientImpl) CreateCustomer(ctx context.Context, userID string) (string, error) {
	form := url.Values{}
	form.Set("metadata[user_id]", userID)

	var customer struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/v1/customers", form, &customer); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return customer.ID, nil
}

func (c *stripeClientImpl) AttachPaymentMethod(ctx context.Context, customerRef, methodRef string) error {
	form := url.Values{}
	form.Set("customer", customerRef)

	if err := c.postForm(ctx, "/v1/payment_methods/"+methodRef+"/attach", form, nil); err != nil {
		return fmt.Errorf("attach payment method: %w", err)
	}
	return nil
}

func (c *stripeClientImpl) SetDefaultPaymentMethod(ctx context.Context, customerRef, methodRef string) error {
	form := url.Values{}
	form.Set("invoice_settings[default_payment_method]", methodRef)

	if err := c.postForm(ctx, "/v1/customers/"+customerRef, form, nil); err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	return nil
}

func (c *stripeClientImpl) CreateSubscription(ctx context.Context, customerRef, priceRef string) (*GatewaySubscription, error) {
	form := url.Values{}
	form.Set("customer", customerRef)
	form.Set("items[0][price]", priceRef)

	var sub GatewaySubscription
	if err := c.postForm(ctx, "/v1/subscriptions", form, &sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &sub, nil
}

func (c *stripeClientImpl) CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*GatewaySubscription, error) {
	var sub GatewaySubscription

	if atPeriodEnd {
		form := url.Values{}
		form.Set("cancel_at_period_end", "true")
		if err := c.postForm(ctx, "/v1/subscriptions/"+subscriptionID, form, &sub); err != nil {
			return nil, fmt.Errorf("cancel subscription at period end: %w", err)
		}
		return &sub, nil
	}

	// immediate cancel: DELETE rather than update
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseApiURL+"/v1/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}
	return &sub, nil
}

func (c *stripeClientImpl) ResumeSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", "false")

	var sub GatewaySubscription
	if err := c.postForm(ctx, "/v1/subscriptions/"+subscriptionID, form, &sub); err != nil {
		return nil, fmt.Errorf("resume subscription: %w", err)
	}
	return &sub, nil
}

const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the "t=<unix>,v1=<hmac>" signature
// header against the shared webhook secret.
func (c *stripeClientImpl) VerifyWebhookSignature(signatureHeader string, body []byte) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(signatureHeader, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	if d := time.Since(time.Unix(ts, 0)); d > signatureTolerance || d < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}
