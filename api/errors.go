package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain error kinds to HTTP statuses. Validation failures
// carry every problem; unauthenticated responses point at the login page.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "problems": validationErr.Problems})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "login": loginLocation(c)})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func loginLocation(c *gin.Context) string {
	return "/login?return=" + url.QueryEscape(c.Request.URL.RequestURI())
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
