package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/service/booking"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/gin-gonic/gin"
)

type TicketRenderer interface {
	Render(b *domain.Booking) string
}

type BookingHandler struct {
	service booking.BookingUseCase
	tickets TicketRenderer
}

type updateBookingRequest struct {
	Status              *string             `json:"status"`
	DepartureDate       *string             `json:"departureDate"`
	SpecialRequirements *string             `json:"specialRequirements"`
	ContactInfo         *domain.ContactInfo `json:"contactInfo"`
}

type searchQuery struct {
	Destination string `form:"destination"`
	Status      string `form:"status"`
	DateFrom    string `form:"dateFrom"`
	DateTo      string `form:"dateTo"`
}

func NewBookingHandler(service booking.BookingUseCase, tickets TicketRenderer) *BookingHandler {
	return &BookingHandler{service: service, tickets: tickets}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/stats", h.stats)
	router.GET("/next", h.next)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.POST("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/ticket", h.ticket)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req domain.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) list(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	filters, err := q.filters()
	if err != nil {
		writeError(c, err)
		return
	}

	bookings, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (q searchQuery) filters() (domain.SearchFilters, error) {
	f := domain.SearchFilters{
		Destination: q.Destination,
		Status:      domain.BookingStatus(q.Status),
	}
	var problems []string
	if f.Status != "" && !f.Status.Valid() {
		problems = append(problems, fmt.Sprintf("invalid status %q", q.Status))
	}
	if q.DateFrom != "" {
		if t, ok := validation.ParseDate(q.DateFrom); ok {
			f.DateFrom = &t
		} else {
			problems = append(problems, "dateFrom is invalid")
		}
	}
	if q.DateTo != "" {
		if t, ok := validation.ParseDate(q.DateTo); ok {
			f.DateTo = &t
		} else {
			problems = append(problems, "dateTo is invalid")
		}
	}
	if len(problems) > 0 {
		return f, domain.NewValidationError(problems...)
	}
	return f, nil
}

func (h *BookingHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *BookingHandler) next(c *gin.Context) {
	next, err := h.service.NextBooking(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if next == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, next)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch := domain.BookingPatch{
		SpecialRequirements: req.SpecialRequirements,
		ContactInfo:         req.ContactInfo,
	}
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		patch.Status = &status
	}
	if req.DepartureDate != nil {
		dep, ok := validation.ParseDate(*req.DepartureDate)
		if !ok {
			writeError(c, domain.NewValidationError("departure date is invalid"))
			return
		}
		patch.DepartureDate = &dep
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (h *BookingHandler) delete(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *BookingHandler) ticket(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if download := strings.ToLower(c.Query("download")); download == "1" || download == "true" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ticket.FileName(b)))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.tickets.Render(b)))
}
