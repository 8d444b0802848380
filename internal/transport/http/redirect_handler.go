package http

import (
	"errors"
	"net/http"

	"github.com/shortloop/shortloop/internal/config"
	"github.com/shortloop/shortloop/internal/constants"
	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"github.com/shortloop/shortloop/internal/processing/links"
	"github.com/shortloop/shortloop/internal/transport/http/middleware"
	"github.com/shortloop/shortloop/pkg/httputils"
	"go.uber.org/zap"
)

// CountryHeader is set by the edge proxy when geo lookup is available.
const CountryHeader = "CF-IPCountry"

type RedirectHandler struct {
	cfg *config.Config
	svc *links.RedirectService
}

func NewRedirectHandler(cfg *config.Config, svc *links.RedirectService) *RedirectHandler {
	return &RedirectHandler{cfg: cfg, svc: svc}
}

// Redirect is the hot path: resolve the code and send the browser on its
// way. A reserved code is indistinguishable from a missing one on purpose.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	target, err := h.svc.Redirect(r.Context(), code, links.ClickContext{
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		IPHash:    middleware.HashIP(r),
		Country:   r.Header.Get(CountryHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, links.ErrNotFound), errors.Is(err, links.ErrReservedCode):
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		case errors.Is(err, links.ErrInactive):
			httputils.WriteAPIError(w, r, constants.ErrLinkInactive)
		case errors.Is(err, links.ErrExpired):
			httputils.WriteAPIError(w, r, constants.ErrLinkExpired)
		case errors.Is(err, links.ErrUnsafeTarget):
			logger.Warn("blocked unsafe redirect target", zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrLinkUnsafeRedirect)
		case errors.Is(err, links.ErrStoreUnavailable):
			logger.Error("link store unavailable", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrServiceUnavailable)
		default:
			logger.Error("failed to resolve code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	http.Redirect(w, r, target, h.cfg.Shortener.RedirectStatus)
}
