package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aboard/internal/service"
)

type postRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Categories []string `json:"categories"`
}

type postListQuery struct {
	pageQuery
	Title    string `form:"title"`
	Category string `form:"category"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{Title: r.Title, Content: r.Content, Categories: r.Categories}
}

func (h *Handler) listPosts(c *gin.Context) error {
	var q postListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	posts, err := h.svc.Posts.List(c.Request.Context(), actor(c), service.PostQuery{
		Title:    q.Title,
		Category: q.Category,
		Page:     page,
	})
	if err != nil {
		return err
	}
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
	return nil
}

func (h *Handler) createPost(c *gin.Context) error {
	var req postRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.svc.Posts.Create(c.Request.Context(), actor(c), req.input())
	if err != nil {
		return err
	}
	return created(c, "post created", post.ID)
}

func (h *Handler) getPost(c *gin.Context) error {
	id, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := h.svc.Posts.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, postToResponse(*post))
	return nil
}

func (h *Handler) updatePost(c *gin.Context) error {
	id, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	var req postRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.svc.Posts.Update(c.Request.Context(), actor(c), id, req.input())
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, postToResponse(*post))
	return nil
}

func (h *Handler) deletePost(c *gin.Context) error {
	id, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	if err := h.svc.Posts.Delete(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return noContent(c)
}

func (h *Handler) likePost(c *gin.Context) error {
	id, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	if err := h.svc.Posts.Like(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return acknowledge(c, "post liked")
}

func (h *Handler) unlikePost(c *gin.Context) error {
	id, err := pathID(c, "post_id")
	if err != nil {
		return err
	}
	if err := h.svc.Posts.Unlike(c.Request.Context(), actor(c), id); err != nil {
		return err
	}
	return acknowledge(c, "post unliked")
}
