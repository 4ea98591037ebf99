package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"covid-testing-server/internal/middleware"
	"covid-testing-server/internal/service/testrequest"
	"covid-testing-server/internal/utils"
)

const invalidIDMessage = "Invalid ID"

// parseRequestID reads the :id path parameter. Anything that is not a
// positive integer is answered with "Invalid ID".
func parseRequestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.BadRequest(c, invalidIDMessage)
		return 0, false
	}
	return uint(id), true
}

// actorFromContext builds the service caller from the authenticated token.
func actorFromContext(c *gin.Context) (testrequest.Actor, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return testrequest.Actor{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User role not found in token")
		return testrequest.Actor{}, false
	}
	return testrequest.Actor{ID: id, Role: role}, true
}

// respondError maps lifecycle errors to HTTP responses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *testrequest.ValidationError
	switch {
	case errors.Is(err, testrequest.ErrInvalidID):
		utils.BadRequest(c, invalidIDMessage)
	case errors.Is(err, testrequest.ErrInvalidState):
		utils.BadRequest(c, "Invalid ID or State: "+err.Error())
	case errors.As(err, &validationErr):
		utils.BadRequest(c, "Constraint violation: "+strings.Join(validationErr.Violations, ", "))
	case errors.Is(err, testrequest.ErrDuplicateRequest):
		utils.BadRequest(c, "A request with the same phone number or email is already in progress")
	case errors.Is(err, testrequest.ErrForbidden):
		utils.Forbidden(c, "You do not have permission to perform this action.")
	default:
		logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		utils.InternalServerError(c, "Internal server error")
	}
}
