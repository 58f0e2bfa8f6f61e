package routehandlers

import (
	"fmt"
	"net/http"

	"github.com/thefortthatholds/storefront/reporting"
	"github.com/thefortthatholds/storefront/webutil"
)

// SalesHandler exposes the reporting view. Access control on the admin surface
// is the responsibility of the deployment in front of this service.
type SalesHandler struct {
	Service *reporting.Service
}

func NewSalesHandler(service *reporting.Service) *SalesHandler {
	return &SalesHandler{Service: service}
}

func (h *SalesHandler) HandleGetSales(w http.ResponseWriter, r *http.Request) error {
	summary, err := h.Service.SalesSummary(r.Context())
	if err != nil {
		return fmt.Errorf("failed to build sales summary: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, summary)
	return nil
}
