package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListSeats - GET /api/seats/:journeyId
// Получить карту мест рейса
func (h *Handlers) ListSeats(c *gin.Context) {
	journeyID, err := uuid.Parse(c.Param("journeyId"))
	if err != nil {
		text(c, http.StatusBadRequest, msgInvalidJourney)
		return
	}

	seatMap, err := h.seats.ListSeats(c.Request.Context(), journeyID)
	if err != nil {
		respondError(c, err)
		return
	}

	// unknown journey and empty layout look the same to the client
	if !seatMap.Found || len(seatMap.Seats) == 0 {
		text(c, http.StatusNotFound, msgNoSeats)
		return
	}

	c.JSON(http.StatusOK, seatMap.Seats)
}
