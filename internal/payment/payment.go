package payment

import "context"

type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency, description string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	VerifyWebhookSignature(payload []byte, sigHeader string) error
}
