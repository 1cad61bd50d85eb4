package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) listComments(c *gin.Context) error {
	postID, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	var q pageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	comments, err := h.svc.Comments.List(c.Request.Context(), actor(c), postID, page)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, commentsToResponse(comments))
	return nil
}

func (h *Handler) createComment(c *gin.Context) error {
	postID, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.Comments.Create(c.Request.Context(), actor(c), postID, req.Content)
	if err != nil {
		return err
	}
	return created(c, "comment created", comment.ID)
}

func (h *Handler) getComment(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	comment, err := h.svc.Comments.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, commentToResponse(*comment))
	return nil
}

func (h *Handler) updateComment(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.Comments.Update(c.Request.Context(), actor(c), id, req.Content)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, commentToResponse(*comment))
	return nil
}

func (h *Handler) deleteComment(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Delete(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return noContent(c)
}

func (h *Handler) likeComment(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Like(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return acknowledge(c, "comment liked")
}

func (h *Handler) unlikeComment(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Unlike(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return acknowledge(c, "comment unliked")
}

func (h *Handler) listReplies(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	var q pageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	replies, err := h.svc.Comments.ListReplies(c.Request.Context(), actor(c), id, page)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, commentsToResponse(replies))
	return nil
}

func (h *Handler) createReply(c *gin.Context) error {
	id, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reply, err := h.svc.Comments.Reply(c.Request.Context(), actor(c), id, req.Content)
	if err != nil {
		return err
	}
	return created(c, "reply created", reply.ID)
}
