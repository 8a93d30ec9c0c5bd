package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opentechiz/express-checkout/pkg/config"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	"github.com/opentechiz/express-checkout/pkg/enums"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
)

// TokenProvider starts an express checkout with the payment provider and
// returns the provider token, or empty when no token was issued.
type TokenProvider interface {
	AcquireToken(ctx context.Context) (string, error)
}

// Client talks to the express checkout API of the payment provider.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds the provider client from configuration.
func NewClient(cfg config.PayPalConfig) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AcquireToken requests a fresh express checkout token.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/v1/express-checkout/token", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build token request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.Newf(pkgerrors.CodeDependency, "payment provider returned status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode token response")
	}
	return body.Token, nil
}

type authorizeRequest struct {
	IncrementID string `json:"increment_id"`
	AmountCents int64  `json:"amount_cents"`
	Email       string `json:"email,omitempty"`
}

type authorizeResponse struct {
	State            string `json:"state"`
	RedirectRequired bool   `json:"redirect_required"`
}

// Authorize captures payment for the order and returns the state the
// provider settled on. When the provider asks for an extra redirect the
// flag is recorded on the order's payment record.
func (c *Client) Authorize(ctx context.Context, order *models.Order) (enums.OrderState, error) {
	if order == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	payload, err := json.Marshal(authorizeRequest{
		IncrementID: order.IncrementID,
		AmountCents: order.GrandTotalCents,
		Email:       order.CustomerEmail,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode authorize request")
	}

	url := fmt.Sprintf("%s/v1/express-checkout/authorize", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build authorize request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.Newf(pkgerrors.CodeDependency, "payment provider returned status %d", resp.StatusCode)
	}

	var body authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode authorize response")
	}

	if body.RedirectRequired && order.Payment != nil {
		if order.Payment.AdditionalInfo == nil {
			order.Payment.AdditionalInfo = map[string]string{}
		}
		order.Payment.AdditionalInfo[models.PaymentInfoRedirect] = "1"
	}

	state, err := enums.ParseOrderState(body.State)
	if err != nil {
		return enums.OrderStateProcessing, nil
	}
	return state, nil
}
