package shared

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/hostdesk/internal/models"

	"github.com/gin-gonic/gin"
)

// WriteAttachment 以下载方式输出附件内容
func WriteAttachment(c *gin.Context, attachment *models.TicketAttachment, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(attachment.OriginalName)))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Checksum-SHA256", attachment.Checksum)
	c.Data(http.StatusOK, attachment.ContentType, data)
}
