package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// requestIdentity names the caller for rate limiting: an authenticated
// organizer, the jury member addressed by the :id path parameter of jury
// routes, or "anon".
func requestIdentity(c echo.Context) string {
	if uid, ok := c.Get(ContextUserID).(uint64); ok && uid != 0 {
		return "organizer:" + strconv.FormatUint(uid, 10)
	}
	if id := c.Param("id"); id != "" {
		return "jury:" + id
	}
	return "anon"
}
