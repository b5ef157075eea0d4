package payment

import (
	"context"
	"unicode/utf8"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// itemNameLimit is the gateway's cap on basket item names.
const itemNameLimit = 50

// MidtransGateway opens hosted Snap payment sessions.
type MidtransGateway struct {
	client snap.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Name() string { return "midtrans" }

func (g *MidtransGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ID,
			Name:  truncateItemName(it.Name, itemNameLimit),
			Price: it.Price,
			Qty:   int32(it.Quantity),
		})
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderRef,
			GrossAmt: req.GrossAmount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Phone: req.CustomerPhone,
		},
	}
	if req.ExpiryMinutes > 0 {
		snapReq.Expiry = &snap.ExpiryDetails{Unit: "minutes", Duration: int64(req.ExpiryMinutes)}
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, snapErr := g.client.CreateTransaction(snapReq)
	if snapErr != nil {
		return nil, apperr.Wrap(apperr.Gateway, apperr.CodePaymentGateway,
			"payment gateway refused to open a session", snapErr)
	}
	return &Session{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// truncateItemName caps a basket item name at limit bytes without
// splitting a multibyte character.
func truncateItemName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
