package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func CheckEditor(c *gin.Context) {
	isEditor := c.MustGet("editor").(bool)

	if !isEditor {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "editor role required"})
		return
	}
}
