package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/api/middleware"
	"github.com/wmmalith63/credence-tender-management/internal/api/validation"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// MustGetPrincipal extracts the caller placed by JWTAuth.
// On failure it writes a 401 and returns false; the caller should return.
func MustGetPrincipal(c *gin.Context) (policy.Principal, bool) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Unauthorized(c, response.CodeAuth, "unauthenticated")
		return policy.Principal{}, false
	}
	roles, _ := c.Get(middleware.CtxRoles)
	list, _ := roles.([]string)
	return policy.Principal{ID: uid, Roles: list}, true
}

// mustParamID parses a positive integer path parameter, writing a 400 on failure
func mustParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(c, apperrors.Validation("invalid "+name, name))
		return 0, false
	}
	return id, true
}

// bindFailed answers a binding error as a validation failure
func bindFailed(c *gin.Context, err error) {
	fields := validation.Fields(err)
	if len(fields) == 0 {
		response.BadRequest(c, response.CodeValidation, "malformed request body")
		return
	}
	response.FromError(c, apperrors.Validation("invalid request", fields...))
}
