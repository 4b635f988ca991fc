package availability

import (
	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/availability"
	"github.com/doctora/clinic-api/internal/service/doctor"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service   *availability.Service
	doctorSvc *doctor.Service
}

func NewHandler(service *availability.Service, doctorSvc *doctor.Service) *Handler {
	return &Handler{service: service, doctorSvc: doctorSvc}
}

// myDoctorID resolves the doctor profile behind the authenticated user.
func (h *Handler) myDoctorID(c *gin.Context) (int64, error) {
	userID := c.GetInt64(middleware.ContextUserID)
	d, err := h.doctorSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return 0, err
	}
	return d.ID, nil
}

func (h *Handler) Add(c *gin.Context) {
	doctorID, err := h.myDoctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AddAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	a, err := h.service.Add(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, a)
}

func (h *Handler) Update(c *gin.Context) {
	doctorID, err := h.myDoctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AddAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	a, err := h.service.Update(c.Request.Context(), doctorID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, a)
}

func (h *Handler) Delete(c *gin.Context) {
	doctorID, err := h.myDoctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), doctorID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

// My lists the authenticated doctor's own windows.
func (h *Handler) My(c *gin.Context) {
	doctorID, err := h.myDoctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.respondWindows(c, doctorID)
}

// ByDoctor is the public listing of a doctor's windows, optionally filtered
// by ISO weekday or a concrete date.
func (h *Handler) ByDoctor(c *gin.Context) {
	doctorID, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.respondWindows(c, doctorID)
}

func (h *Handler) respondWindows(c *gin.Context, doctorID int64) {
	ctx := c.Request.Context()

	if date := c.Query("date"); date != "" {
		windows, err := h.service.ListForDoctorOnDate(ctx, doctorID, date)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, windows)
		return
	}

	if day := httputil.QueryInt(c, "day_of_week", 0); day != 0 {
		windows, err := h.service.ListForDoctorByDay(ctx, doctorID, day)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, windows)
		return
	}

	windows, err := h.service.ListForDoctor(ctx, doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, windows)
}
