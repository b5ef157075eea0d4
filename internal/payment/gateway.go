package payment

import "context"

// LineItem is one basket line sent to the hosted payment page. The sum
// of Price*Quantity over all lines must equal the session's gross
// amount; gateways reject or silently truncate mismatched baskets.
type LineItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

// SessionRequest describes a hosted payment session to be opened with
// the gateway.
type SessionRequest struct {
	OrderRef      string
	GrossAmount   int64
	Items         []LineItem
	CustomerName  string
	CustomerPhone string
	ExpiryMinutes int
	FinishURL     string
}

// Session is the redirect handle returned by the gateway.
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// Gateway abstracts the hosted-payment provider so the session service
// can be exercised without network access.
type Gateway interface {
	// Name identifies the provider in persisted correlation fields.
	Name() string

	// CreateSession opens a hosted payment session. Failures carry the
	// Gateway error kind so callers can distinguish them from
	// validation problems.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}
