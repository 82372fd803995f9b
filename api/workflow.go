package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/service/workflow"
	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	workflow workflow.WorkflowUseCase
}

type passengerCountRequest struct {
	Count int `json:"count"`
}

func NewWorkflowHandler(wf workflow.WorkflowUseCase) *WorkflowHandler {
	return &WorkflowHandler{workflow: wf}
}

func (h *WorkflowHandler) Register(router *gin.RouterGroup) {
	router.GET("/workflow", h.state)
	router.PUT("/workflow", h.apply)
	router.PUT("/workflow/passengers", h.setPassengerCount)
	router.POST("/workflow/passengers", h.addPassenger)
	router.PUT("/workflow/passengers/:index", h.updatePassenger)
	router.DELETE("/workflow/passengers/:index", h.removePassenger)
	router.POST("/workflow/draft", h.saveDraft)
	router.POST("/workflow/draft/restore", h.restoreDraft)
	router.POST("/workflow/submit", h.submit)
	router.POST("/quote", h.quote)
}

func (h *WorkflowHandler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.State())
}

func (h *WorkflowHandler) apply(c *gin.Context) {
	var change workflow.Change
	if err := c.ShouldBindJSON(&change); err != nil {
		badRequest(c, err)
		return
	}
	state, err := h.workflow.Apply(c.Request.Context(), change)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *WorkflowHandler) setPassengerCount(c *gin.Context) {
	var req passengerCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respond(c)(h.workflow.SetPassengerCount(req.Count))
}

func (h *WorkflowHandler) addPassenger(c *gin.Context) {
	h.respond(c)(h.workflow.AddPassenger())
}

func (h *WorkflowHandler) updatePassenger(c *gin.Context) {
	index, ok := passengerIndex(c)
	if !ok {
		return
	}
	var p domain.Passenger
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.respond(c)(h.workflow.UpdatePassenger(index, p))
}

func (h *WorkflowHandler) removePassenger(c *gin.Context) {
	index, ok := passengerIndex(c)
	if !ok {
		return
	}
	h.respond(c)(h.workflow.RemovePassenger(index))
}

func (h *WorkflowHandler) respond(c *gin.Context) func(workflow.State, error) {
	return func(state workflow.State, err error) {
		if err != nil {
			if errors.Is(err, workflow.ErrPassengerIndex) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

func passengerIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid passenger index"})
		return 0, false
	}
	return index, true
}

func (h *WorkflowHandler) saveDraft(c *gin.Context) {
	if err := h.workflow.SaveDraft(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.State())
}

func (h *WorkflowHandler) restoreDraft(c *gin.Context) {
	restored, err := h.workflow.RestoreDraft(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !restored {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, h.workflow.State())
}

func (h *WorkflowHandler) submit(c *gin.Context) {
	sub, err := h.workflow.Submit(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":        sub.Booking,
		"ticketFileName": sub.FileName,
		"ticketUrl":      fmt.Sprintf("/api/bookings/%s/ticket", sub.Booking.ID),
	})
}

func (h *WorkflowHandler) quote(c *gin.Context) {
	var req workflow.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	price, err := h.workflow.Quote(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}
