package handlers

import (
	"errors"
	"net/http"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// domainError maps a domain error to its status code.
func domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateGroupName), errors.Is(err, domain.ErrDuplicateVariation):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEmptyGroupName), errors.Is(err, domain.ErrEmptyVariation):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmptyHistory):
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
