package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkup/internal/pkg/validator"
)

// OK writes {"ok": true, ...fields}.
func OK(c *gin.Context, statusCode int, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"ok": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"ok": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// BindError reports a request that failed to bind. Field failures are
// listed under error.details; malformed bodies get the message only.
func BindError(c *gin.Context, err error) {
	fields := validator.Fields(err)
	if fields == nil {
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Message(err))
		return
	}
	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Message(err), fields)
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}
