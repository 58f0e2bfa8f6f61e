package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/thefortthatholds/storefront/route-handlers"
	"github.com/thefortthatholds/storefront/webutil"
)

const (
	checkoutPath = "/api/checkout"
	webhookPath  = "/webhooks/payment"
	downloadPath = "/download/{itemID}/{token}"
	salesPath    = "/admin/sales"
	healthPath   = "/healthz"
)

const requestTimeout = 60 * time.Second

// Download rate limiting slows token guessing without bothering legitimate
// customers, who present a link once.
const (
	downloadRatePerSecond = 1.0
	downloadRateBurst     = 5
)

func SetupRoutes(
	checkoutHandler *rh.CheckoutHandler,
	webhookHandler *rh.PaymentWebhookHandler,
	downloadHandler *rh.DownloadHandler,
	salesHandler *rh.SalesHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Log every request
	r.Use(middleware.Recoverer) // Recover from panics
	r.Use(middleware.Timeout(requestTimeout))

	r.Post(checkoutPath, webutil.MakeHandler(checkoutHandler.HandleCreateCheckout))
	r.Post(webhookPath, webutil.MakeHandler(webhookHandler.HandlePaymentConfirmation))

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(downloadRatePerSecond, downloadRateBurst))
		r.Get(downloadPath, webutil.MakeHandler(downloadHandler.HandleDownload))
	})

	r.Get(salesPath, webutil.MakeHandler(salesHandler.HandleGetSales))
	r.Get(healthPath, handleHealthCheck)

	return r
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
