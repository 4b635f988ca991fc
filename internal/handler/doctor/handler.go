package doctor

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/doctor"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service *doctor.Service
}

func NewHandler(service *doctor.Service) *Handler {
	return &Handler{service: service}
}

// List is the public doctor listing with optional name/specialty/fee filters.
func (h *Handler) List(c *gin.Context) {
	filters := model.DoctorFilters{
		Name: c.Query("name"),
		Pagination: model.Pagination{
			Page:     httputil.QueryInt(c, "page", 1),
			PageSize: httputil.QueryInt(c, "page_size", 20),
		},
	}

	if v := c.Query("specialty_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid specialty_id parameter"))
			return
		}
		filters.SpecialtyID = &id
	}
	if v := c.Query("min_fee"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid min_fee parameter"))
			return
		}
		filters.MinFee = &fee
	}
	if v := c.Query("max_fee"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid max_fee parameter"))
			return
		}
		filters.MaxFee = &fee
	}

	doctors, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filters.Normalize()
	httputil.RespondWithPagination(c, doctors, filters.Page, filters.PageSize, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) BySpecialty(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p := model.Pagination{
		Page:     httputil.QueryInt(c, "page", 1),
		PageSize: httputil.QueryInt(c, "page_size", 20),
	}

	doctors, total, err := h.service.ListBySpecialtyID(c.Request.Context(), id, p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p.Normalize()
	httputil.RespondWithPagination(c, doctors, p.Page, p.PageSize, total)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, stats)
}

// SmartSelect picks the least-busy doctor for a specialty, optionally on a
// specific date.
func (h *Handler) SmartSelect(c *gin.Context) {
	specialty := c.Query("specialty")
	if specialty == "" {
		httputil.RespondWithError(c, apperrors.Validation("specialty parameter is required"))
		return
	}

	selection, err := h.service.SmartSelect(c.Request.Context(), specialty, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, selection)
}

// MyProfile returns the doctor profile of the authenticated user.
func (h *Handler) MyProfile(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	d, err := h.service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) UpdateMyProfile(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	d, err := h.service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), d.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

// Create is the admin operation that promotes a user to doctor.
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	d, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, d)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	d, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, d)
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

// SetActive toggles whether a doctor accepts bookings.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	d, err := h.service.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, d)
}
