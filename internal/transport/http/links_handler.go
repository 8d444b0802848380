package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shortloop/shortloop/internal/config"
	"github.com/shortloop/shortloop/internal/constants"
	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	appvalidation "github.com/shortloop/shortloop/internal/infrastructure/validation"
	"github.com/shortloop/shortloop/internal/processing/links"
	"github.com/shortloop/shortloop/internal/transport/http/middleware"
	"github.com/shortloop/shortloop/pkg/httputils"
	"go.uber.org/zap"
)

type LinksHandler struct {
	cfg *config.Config
	svc *links.Service
}

func NewLinksHandler(cfg *config.Config, svc *links.Service) *LinksHandler {
	return &LinksHandler{cfg: cfg, svc: svc}
}

type createLinkRequest struct {
	OriginalURL string     `json:"originalUrl" validate:"required,notblank,http_url"`
	CustomAlias string     `json:"customAlias,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" validate:"omitempty,future"`
}

type createLinkResponse struct {
	LinkID      string     `json:"linkId"`
	Code        string     `json:"code"`
	OriginalURL string     `json:"originalUrl"`
	ShortURL    string     `json:"shortUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrInvalidRequestBody
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, e := range validationErrs {
				if e.Field() == "originalUrl" {
					apiErr = constants.ErrInvalidURL
					break
				}
				if e.Field() == "expiresAt" && e.Tag() == "future" {
					apiErr = apiErr.WithMessage("expiresAt must be in the future")
					break
				}
			}
		}
		httputils.WriteAPIError(w, r, apiErr)
		return
	}

	link, err := h.svc.CreateLink(r.Context(), links.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		CustomAlias: req.CustomAlias,
		ExpiresAt:   req.ExpiresAt,
		OwnerID:     strings.TrimSpace(r.Header.Get(middleware.UserIDHeader)),
	})
	if err != nil {
		switch {
		case errors.Is(err, links.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		case errors.Is(err, links.ErrInvalidAlias):
			httputils.WriteAPIError(w, r, constants.ErrInvalidAlias)
		case errors.Is(err, links.ErrReservedCode):
			httputils.WriteAPIError(w, r, constants.ErrInvalidAlias.WithMessage("customAlias is a reserved path"))
		case errors.Is(err, links.ErrCodeTaken):
			httputils.WriteAPIError(w, r, constants.ErrAliasTaken)
		default:
			logger.Error("failed to create link", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	logger.Info("link created",
		zap.String("link_id", link.ID),
		zap.String("code", link.Code),
		zap.Bool("custom_alias", req.CustomAlias != ""),
	)

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, createLinkResponse{
		LinkID:      link.ID,
		Code:        link.Code,
		OriginalURL: link.OriginalURL,
		ShortURL:    strings.TrimRight(h.cfg.Shortener.BaseURL, "/") + "/" + link.Code,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	})
}
