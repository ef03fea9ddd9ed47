package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/esypg/pg-marketplace/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// callerFrom builds the caller identity injected by the Auth middleware.
// Routes without the middleware yield an anonymous caller.
func callerFrom(c echo.Context) domain.Caller {
	id, _ := c.Get(CtxAccountID).(string)
	role, _ := c.Get(CtxRole).(string)
	return domain.Caller{ID: id, Role: role}
}
