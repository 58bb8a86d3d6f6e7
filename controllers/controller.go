package controllers

import (
	"net/http"

	"pontocom/models"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// RespondDomainError traduz o Kind do erro de domínio em status HTTP. Erros que
// não são de domínio caem em 500 com a mensagem crua.
func RespondDomainError(c *gin.Context, err error) {
	de, ok := models.IsDomainError(err)
	if !ok {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	code := http.StatusInternalServerError
	switch de.Kind {
	case models.ERROR_VALIDATION, models.ERROR_INVALID_TRANSITION,
		models.ERROR_PACKAGE_EXPIRED, models.ERROR_DUPLICATE_SALE_NUMBER:
		code = http.StatusBadRequest
	case models.ERROR_NOT_FOUND:
		code = http.StatusNotFound
	case models.ERROR_ALREADY_INVOICED, models.ERROR_CONCURRENT_EXECUTION:
		code = http.StatusConflict
	}

	c.JSON(code, de)
}
