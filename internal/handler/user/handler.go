package user

import (
	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/user"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, u)
}

// List is the admin user listing.
func (h *Handler) List(c *gin.Context) {
	p := model.Pagination{
		Page:     httputil.QueryInt(c, "page", 1),
		PageSize: httputil.QueryInt(c, "page_size", 20),
	}

	users, total, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p.Normalize()
	httputil.RespondWithPagination(c, users, p.Page, p.PageSize, total)
}
