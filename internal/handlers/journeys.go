package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/models"
)

// SearchJourneys - POST /api/search/search
// Поиск рейсов по маршруту и дате
func (h *Handlers) SearchJourneys(c *gin.Context) {
	var req models.SearchJourneysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		text(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	journeys, err := h.journeys.Search(c.Request.Context(), req.From, req.To, req.JourneyDate)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(journeys) == 0 {
		text(c, http.StatusNotFound, msgNoJourneys)
		return
	}

	c.JSON(http.StatusOK, journeys)
}
