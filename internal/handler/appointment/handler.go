package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/service/appointment"
	"github.com/doctora/clinic-api/internal/service/doctor"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/httputil"
)

type Handler struct {
	service   *appointment.Service
	doctorSvc *doctor.Service
}

func NewHandler(service *appointment.Service, doctorSvc *doctor.Service) *Handler {
	return &Handler{service: service, doctorSvc: doctorSvc}
}

func (h *Handler) Create(c *gin.Context) {
	patientID := c.GetInt64(middleware.ContextUserID)

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

// CreateWithPatientInfo books an appointment with an immutable snapshot of
// the patient's details and a queue number.
func (h *Handler) CreateWithPatientInfo(c *gin.Context) {
	patientID := c.GetInt64(middleware.ContextUserID)

	var req model.CreateAppointmentWithPatientInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	result, err := h.service.CreateWithPatientInfo(c.Request.Context(), patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, result)
}

// Confirm moves a pending appointment to CONFIRMED. Doctors may confirm only
// their own appointments.
func (h *Handler) Confirm(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	d, err := h.doctorSvc.GetByUserID(c.Request.Context(), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Confirm(c.Request.Context(), id, d.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

// Cancel cancels an appointment. The patient who booked it or the owning
// doctor may cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id, c.GetInt64(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) GetBookingInfo(c *gin.Context) {
	id, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	info, err := h.service.GetBookingInfo(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, info)
}

// My lists the authenticated patient's appointments, newest first.
func (h *Handler) My(c *gin.Context) {
	patientID := c.GetInt64(middleware.ContextUserID)

	appointments, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

// MySchedule lists the authenticated doctor's appointments, optionally for a
// single date.
func (h *Handler) MySchedule(c *gin.Context) {
	d, err := h.doctorSvc.GetByUserID(c.Request.Context(), c.GetInt64(middleware.ContextUserID))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var appointments []*model.Appointment
	if date := c.Query("date"); date != "" {
		appointments, err = h.service.ListByDoctorAndDate(c.Request.Context(), d.ID, date)
	} else {
		appointments, err = h.service.ListForDoctor(c.Request.Context(), d.ID)
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

// BookedSlots is the public view of a doctor's occupied slots on a date,
// used by booking clients to grey out taken times.
func (h *Handler) BookedSlots(c *gin.Context) {
	doctorID, err := httputil.ParamInt64(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.Validation("date parameter is required"))
		return
	}

	slots, err := h.service.BookedSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}
