package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/auth"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		// Bad credentials are 401 here, not the generic 403 mapping.
		if apperrors.IsKind(err, apperrors.KindAuthorization) {
			c.JSON(http.StatusUnauthorized, httputil.Response{
				Status:  "error",
				Message: "invalid email or password",
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}
