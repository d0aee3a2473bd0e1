package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cozycorner-be/internal/logger"

	"go.uber.org/zap"
)

const (
	stripeBaseURL = "https://api.stripe.com"

	// Tolerance applied to the signed timestamp in the webhook header.
	signatureTolerance = 5 * time.Minute
)

type stripeGateway struct {
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
	now           func() time.Time
}

// ----------------- Constructor -----------------

func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	if webhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty, all webhooks will be rejected")
	}

	return &stripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

// MinorUnits converts a dollar amount to cents the way the provider expects.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ----------------- CreateIntent -----------------

func (s *stripeGateway) CreateIntent(ctx context.Context, amount float64, currency, description string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.Float64("amount", amount),
		zap.String("currency", currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(MinorUnits(amount), 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if description != "" {
		form.Set("description", description)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		stripeBaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Info("Creating Stripe payment intent")

	return s.doIntentRequest(req, log)
}

// ----------------- RetrieveIntent -----------------

func (s *stripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(zap.String("intent_id", intentID))

	req, err := http.NewRequestWithContext(ctx, "GET",
		stripeBaseURL+"/v1/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	return s.doIntentRequest(req, log)
}

func (s *stripeGateway) doIntentRequest(req *http.Request, log *zap.Logger) (*Intent, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("Stripe request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("Stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("stripe error: %s", string(bodyBytes))
	}

	var intent Intent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		log.Error("Failed decoding Stripe response", zap.Error(err))
		return nil, err
	}

	log.Info("Stripe intent response",
		zap.String("intent_id", intent.ID),
		zap.String("status", intent.Status),
	)
	return &intent, nil
}

// ----------------- Verify Signature -----------------

// VerifyWebhookSignature checks the Stripe-Signature header against the raw
// payload. The header carries a unix timestamp and one or more v1 HMAC-SHA256
// signatures over "<timestamp>.<payload>". Verification fails closed: an empty
// secret or a malformed header rejects the event.
func (s *stripeGateway) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if s.webhookSecret == "" || sigHeader == "" {
		return ErrInvalidSignature
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := s.now().Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
