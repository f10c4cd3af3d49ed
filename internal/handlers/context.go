// internal/handlers/context.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

// tenantFromContext pulls the authenticated tenant out of the request
// context. A missing or malformed claim answers 401 and returns false.
func tenantFromContext(c *gin.Context) (uuid.UUID, models.TenantType, bool) {
	tenantIDStr, exists := utils.GetTenantIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}
	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}

	tenantTypeStr, _ := utils.GetTenantTypeFromContext(c)
	return tenantID, models.TenantType(tenantTypeStr), true
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a :param path segment as a UUID, answering 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
