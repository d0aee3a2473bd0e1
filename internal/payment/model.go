package payment

// Intent mirrors the slice of a Stripe PaymentIntent the rest of the system
// cares about. Amount is in minor currency units, as the provider reports it.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}
