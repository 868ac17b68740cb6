package auth

import "github.com/gin-gonic/gin"

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// SetPrincipal stores the caller on the gin context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(ContextUserID, p.UserID)
	c.Set(ContextRole, string(p.Role))
}

// PrincipalFrom reads the caller placed by the auth middleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	idAny, ok := c.Get(ContextUserID)
	if !ok {
		return Principal{}, false
	}
	id, ok := idAny.(int64)
	if !ok || id == 0 {
		return Principal{}, false
	}
	role, _ := ParseRole(c.GetString(ContextRole))
	return Principal{UserID: id, Role: role}, true
}
