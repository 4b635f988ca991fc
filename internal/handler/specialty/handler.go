package specialty

import (
	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/specialty"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service *specialty.Service
}

func NewHandler(service *specialty.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	specialties, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}

func (h *Handler) ListWithDoctorCount(c *gin.Context) {
	specialties, err := h.service.ListWithDoctorCount(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	sp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sp)
}

func (h *Handler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		httputil.RespondWithError(c, apperrors.Validation("name parameter is required"))
		return
	}

	specialties, err := h.service.Search(c.Request.Context(), name)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateSpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	sp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, sp)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreateSpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	sp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
