package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/thefortthatholds/storefront/checkout"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/webutil"
)

type CheckoutHandler struct {
	Service *checkout.Service
}

func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{Service: service}
}

type createCheckoutRequest struct {
	ItemID        string  `json:"item_id"`
	Price         float64 `json:"price"`
	CustomerEmail string  `json:"customer_email,omitempty"`
}

// HandleCreateCheckout opens a payment session for a catalog item. The quoted
// price must match the catalog exactly; the call persists nothing, so clients
// may retry it freely.
func (h *CheckoutHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) error {
	var req createCheckoutRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.ItemID == "" {
		return webutil.ErrBadRequest("Missing required field item_id")
	}

	result, err := h.Service.CreateSession(r.Context(), req.ItemID, req.Price, req.CustomerEmail)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrItemNotFound):
			return webutil.ErrBadRequestWrap("Invalid item ID", err)
		case errors.Is(err, models.ErrPriceMismatch):
			return webutil.ErrBadRequestWrap("Price mismatch", err)
		case errors.Is(err, models.ErrGatewayUnavailable):
			return webutil.ErrBadGatewayWrap("Payment gateway unavailable, please retry", err)
		}
		return fmt.Errorf("failed to create checkout session for %s: %w", req.ItemID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, result)
	return nil
}
