package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aboard/internal/domain"
	"aboard/internal/service"
)

func (h *Handler) listAttachments(c *gin.Context) error {
	postID, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	attachments, err := h.svc.Attachments.List(c.Request.Context(), actor(c), postID)
	if err != nil {
		return err
	}
	resp := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		resp[i] = attachmentToResponse(attachments[i])
	}
	c.JSON(http.StatusOK, resp)
	return nil
}

func (h *Handler) uploadAttachment(c *gin.Context) error {
	postID, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationFailed("multipart field 'file' is required")
	}
	file, err := header.Open()
	if err != nil {
		return domain.Internal("failed to read upload", err)
	}
	defer file.Close()

	attachment, err := h.svc.Attachments.Upload(c.Request.Context(), actor(c), postID, service.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}
	c.JSON(http.StatusCreated, attachmentToResponse(*attachment))
	return nil
}

func (h *Handler) deleteAttachments(c *gin.Context) error {
	postID, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	if _, err := h.svc.Attachments.DeleteAll(c.Request.Context(), actor(c), postID); err != nil {
		return err
	}
	return noContent(c)
}
