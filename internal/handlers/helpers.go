package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"munitask/internal/apperrors"
)

// tolerante con los tipos (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID int64, roleID int) {
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		userID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		roleID = int(id)
	}
	return
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondError traduce los errores tipados de los servicios a la respuesta
// HTTP; cualquier otro error queda en 500 con un mensaje genérico.
func respondError(c *gin.Context, tag string, err error) {
	code := apperrors.StatusCode(err)
	log.Printf("%s[err] status=%d: %v", tag, code, err)
	if code >= 500 {
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
