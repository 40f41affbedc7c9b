package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func internalError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
}
