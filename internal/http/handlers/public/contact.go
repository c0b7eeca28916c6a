package public

import (
	"fmt"
	"io"
	"net/http"

	"github.com/domku/domku-api/internal/http/handlers/shared"
	"github.com/domku/domku-api/internal/http/response"
	"github.com/domku/domku-api/internal/service"

	"github.com/gin-gonic/gin"
)

// 联系表单附件上限 5MB
const maxContactAttachmentBytes = 5 << 20

// ContactSend POST /api/contact/send（multipart，截图可选）
func (h *Handler) ContactSend(c *gin.Context) {
	name := service.StripMarkup(c.PostForm("name"))
	email := service.NormalizeEmail(c.PostForm("email"))
	message := service.StripMarkup(c.PostForm("message"))
	if name == "" || email == "" || message == "" {
		response.BadRequest(c, "All fields are required")
		return
	}
	if !service.IsValidEmail(email) {
		response.BadRequest(c, "Invalid email address")
		return
	}

	var attachment *service.ContactAttachment
	if file, err := c.FormFile("image"); err == nil && file != nil {
		if file.Size > maxContactAttachmentBytes {
			response.BadRequest(c, "Attachment is too large")
			return
		}
		opened, err := file.Open()
		if err != nil {
			shared.RespondError(c, http.StatusInternalServerError, "Failed to read attachment", err)
			return
		}
		data, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			shared.RespondError(c, http.StatusInternalServerError, "Failed to read attachment", err)
			return
		}
		attachment = &service.ContactAttachment{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	subject := "Contact form: " + name
	body := fmt.Sprintf("From: %s <%s>\n\n%s", name, email, message)
	if err := h.email.SendContactMessage(email, subject, body, attachment); err != nil {
		respondMappedError(c, authErrorRules, err, "Failed to send message")
		return
	}
	response.Success(c, gin.H{"message": "Message sent"})
}
