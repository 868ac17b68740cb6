package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"linkup/internal/domain/auth"
	"linkup/internal/pkg/response"
)

// requestRecord is one failed request as written to the log.
type requestRecord struct {
	kind      string
	status    int
	method    string
	path      string
	query     string
	clientIP  string
	userID    int64
	role      auth.Role
	requestID string
	latency   time.Duration
}

func newRequestRecord(c *gin.Context, kind string, start time.Time) requestRecord {
	rec := requestRecord{
		kind:      kind,
		status:    c.Writer.Status(),
		method:    c.Request.Method,
		path:      c.Request.URL.Path,
		query:     c.Request.URL.RawQuery,
		clientIP:  c.ClientIP(),
		requestID: requestID(c),
		latency:   time.Since(start),
	}
	if p, ok := auth.PrincipalFrom(c); ok {
		rec.userID, rec.role = p.UserID, p.Role
	}
	return rec
}

func (r requestRecord) print(message string, stack []byte) {
	line := fmt.Sprintf(
		"request_error type=%s status=%d method=%s path=%s query=%s client_ip=%s user_id=%d role=%s request_id=%s latency=%s error=%q",
		r.kind, r.status, r.method, r.path, r.query, r.clientIP, r.userID, r.role, r.requestID, r.latency, message,
	)
	if len(stack) > 0 {
		line += "\n" + string(stack)
	}
	log.Print(line)
}

// ErrorLogger recovers panics into a 500 envelope and logs every request
// that ends with gin errors or a 5xx status.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				newRequestRecord(c, "panic", start).print(fmt.Sprint(recovered), debug.Stack())
				return
			}

			switch {
			case len(c.Errors) > 0:
				for _, e := range c.Errors {
					newRequestRecord(c, fmt.Sprintf("%v", e.Type), start).print(e.Error(), nil)
				}
			case c.Writer.Status() >= http.StatusInternalServerError:
				newRequestRecord(c, "http_error", start).print(fmt.Sprintf("status=%d", c.Writer.Status()), nil)
			}
		}()

		c.Next()
	}
}
