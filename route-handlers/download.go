package routehandlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/thefortthatholds/storefront/delivery"
	"github.com/thefortthatholds/storefront/models"
	"github.com/thefortthatholds/storefront/webutil"
)

type DownloadHandler struct {
	Service *delivery.Service
}

func NewDownloadHandler(service *delivery.Service) *DownloadHandler {
	return &DownloadHandler{Service: service}
}

// HandleDownload validates the presented token and streams the purchased EPUB.
// The token is consumed before the first response byte; a repeat presentation
// deterministically gets 410.
func (h *DownloadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) error {
	itemID := chi.URLParam(r, "itemID")
	token := chi.URLParam(r, "token")
	if itemID == "" || token == "" {
		return webutil.ErrBadRequest("Missing item ID or download token")
	}

	download, err := h.Service.ResolveDownload(r.Context(), itemID, token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidToken):
			return webutil.ErrNotFoundWrap("Invalid or expired download link", err)
		case errors.Is(err, models.ErrTokenExpired):
			return webutil.ErrGoneWrap("Download link has expired", err)
		case errors.Is(err, models.ErrAlreadyConsumed):
			return webutil.ErrGoneWrap("Download link has already been used", err)
		case errors.Is(err, models.ErrItemNotFound):
			return webutil.ErrNotFoundWrap("Unknown item", err)
		case errors.Is(err, models.ErrFileUnavailable):
			return webutil.ErrServiceUnavailableWrap("File temporarily unavailable, please retry later", err)
		}
		return fmt.Errorf("failed to resolve download for item %s: %w", itemID, err)
	}
	defer download.Content.Close()

	w.Header().Set(webutil.HeaderContentType, download.ContentType)
	w.Header().Set(webutil.HeaderContentLength, strconv.FormatInt(download.Size, 10))
	w.Header().Set(webutil.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, download.Content); err != nil {
		// Headers are already sent; nothing to do but log the broken transfer.
		log.Printf("WARN (Download): stream of %s aborted: %v", download.FileName, err)
	}
	return nil
}
