package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/api/middleware"
	"github.com/opentechiz/express-checkout/api/responses"
	"github.com/opentechiz/express-checkout/api/validators"
	"github.com/opentechiz/express-checkout/internal/express"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/db/models"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

type tokenAcquirer interface {
	AcquireToken(ctx context.Context, sess *session.State) (string, error)
}

// ExpressToken starts an express attempt: the provider token is acquired
// and, when early order creation is enabled, leftovers of a prior attempt
// are reconciled and a fresh pending order is created.
func ExpressToken(gate tokenAcquirer, sessions session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "token gate unavailable"))
			return
		}

		var payload tokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, sess, err := loadSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.QuoteID = &payload.QuoteID

		token, err := gate.AcquireToken(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Save(r.Context(), sessionID, sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tokenResponse{
			Token:   token,
			OrderID: sess.LastOrderID,
		})
	}
}

// ExpressCreateOrder materializes a pending order for the session's quote
// ahead of payment confirmation.
func ExpressCreateOrder(svc express.Service, sessions session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, sess, err := loadSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), sess, payload.ShippingMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := sessions.Save(r.Context(), sessionID, sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if order == nil {
			responses.WriteSuccess(w, createOrderResponse{Created: false})
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			Created: true,
			Order:   newOrderResponse(order),
		})
	}
}

// ExpressPlace finalizes the checkout after the buyer returned from the
// payment provider.
func ExpressPlace(svc express.Service, sessions session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload placeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, sess, err := loadSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Place(r.Context(), sess, payload.Token, payload.ShippingMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := sessions.Save(r.Context(), sessionID, sess); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result == nil {
			responses.WriteSuccess(w, placeResponse{Placed: false})
			return
		}
		responses.WriteSuccess(w, placeResponse{
			Placed:      true,
			Order:       newOrderResponse(result.Order),
			RedirectURL: result.RedirectURL,
		})
	}
}

func loadSession(r *http.Request, sessions session.Store) (string, *session.State, error) {
	if sessions == nil {
		return "", nil, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout session not resolved")
	}
	sess, err := sessions.Load(r.Context(), sessionID)
	if err != nil {
		return "", nil, err
	}
	return sessionID, sess, nil
}

type tokenRequest struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
}

type tokenResponse struct {
	Token   string     `json:"token"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

type createOrderRequest struct {
	ShippingMethod string `json:"shipping_method,omitempty" validate:"omitempty,max=120"`
}

type createOrderResponse struct {
	Created bool           `json:"created"`
	Order   *orderResponse `json:"order,omitempty"`
}

type placeRequest struct {
	Token          string `json:"token" validate:"required,max=64"`
	ShippingMethod string `json:"shipping_method,omitempty" validate:"omitempty,max=120"`
}

type placeResponse struct {
	Placed      bool           `json:"placed"`
	Order       *orderResponse `json:"order,omitempty"`
	RedirectURL string         `json:"redirect_url,omitempty"`
}

type orderResponse struct {
	OrderID         uuid.UUID  `json:"order_id"`
	IncrementID     string     `json:"increment_id"`
	State           string     `json:"state"`
	CustomerEmail   string     `json:"customer_email"`
	SubtotalCents   int64      `json:"subtotal_cents"`
	GrandTotalCents int64      `json:"grand_total_cents"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func newOrderResponse(order *models.Order) *orderResponse {
	if order == nil {
		return nil
	}
	resp := &orderResponse{
		OrderID:         order.ID,
		IncrementID:     order.IncrementID,
		State:           order.State.String(),
		CustomerEmail:   order.CustomerEmail,
		SubtotalCents:   order.SubtotalCents,
		GrandTotalCents: order.GrandTotalCents,
	}
	if !order.CreatedAt.IsZero() {
		created := order.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
