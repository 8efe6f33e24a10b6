package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "busline/internal/errors"
	"busline/internal/models"
)

// BookSeat - POST /api/seats/book (также /api/book и /api/book/bookS)
// Забронировать место
func (h *Handlers) BookSeat(c *gin.Context) {
	var req models.BookSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		text(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ok, err := h.bookings.RequestBooking(c.Request.Context(), &req)
	if !ok {
		if err == nil {
			err = apperrors.Infrastructure(nil, "booking was not created")
		}
		respondError(c, err)
		return
	}

	text(c, http.StatusOK, msgBooked)
}

// GetBooking - GET /api/bookings/:bookingId
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		text(c, http.StatusBadRequest, msgInvalidBooking)
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			text(c, http.StatusNotFound, msgBookingNotFound)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
