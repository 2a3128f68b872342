package admin

import (
	"net/url"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getOperatorID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func currentActor(c *gin.Context) (service.SupportActor, bool) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return service.SupportActor{}, false
	}
	return service.SupportActor{UserID: operatorID, Role: handlershared.GetUserRole(c)}, true
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, handlershared.AllErrorRules, fallbackCode, fallbackKey)
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request == nil || c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseBoolNullable(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		value := true
		return &value
	case "false", "0":
		value := false
		return &value
	default:
		return nil
	}
}

func parseBoolFlag(raw string) bool {
	value := parseBoolNullable(raw)
	return value != nil && *value
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}

func isStaffRole(role string) bool {
	return role == constants.UserRoleAdmin || role == constants.UserRoleSupport
}
