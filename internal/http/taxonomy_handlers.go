package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type nameListQuery struct {
	pageQuery
	Name string `form:"name"`
}

func (h *Handler) listCategories(c *gin.Context) error {
	var q nameListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	categories, err := h.svc.Categories.List(c.Request.Context(), q.Name, page)
	if err != nil {
		return err
	}
	resp := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		resp[i] = CategoryResponse{
			ID:        category.ID,
			Name:      category.Name,
			CreatedBy: refToResponse(category.CreatedBy),
			CreatedAt: formatTime(category.CreatedAt),
		}
	}
	c.JSON(http.StatusOK, resp)
	return nil
}

func (h *Handler) addCategory(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.svc.Categories.Create(c.Request.Context(), actor(c), req.Name)
	if err != nil {
		return err
	}
	return created(c, "category created", category.ID)
}

func (h *Handler) renameCategory(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := h.svc.Categories.Rename(c.Request.Context(), actor(c), c.Param("name"), req.Name); err != nil {
		return err
	}
	return acknowledge(c, "category renamed")
}

func (h *Handler) deleteCategory(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Categories.Delete(c.Request.Context(), actor(c), req.Name); err != nil {
		return err
	}
	return noContent(c)
}

func (h *Handler) listTags(c *gin.Context) error {
	var q nameListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	tags, err := h.svc.Tags.List(c.Request.Context(), q.Name, page)
	if err != nil {
		return err
	}
	resp := make([]TagResponse, len(tags))
	for i, tag := range tags {
		resp[i] = TagResponse{
			ID:        tag.ID,
			Name:      tag.Name,
			CreatedBy: refToResponse(tag.CreatedBy),
			CreatedAt: formatTime(tag.CreatedAt),
		}
	}
	c.JSON(http.StatusOK, resp)
	return nil
}

func (h *Handler) addTag(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tag, err := h.svc.Tags.Create(c.Request.Context(), actor(c), req.Name)
	if err != nil {
		return err
	}
	return created(c, "tag created", tag.ID)
}

func (h *Handler) renameTag(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, err := h.svc.Tags.Rename(c.Request.Context(), actor(c), c.Param("name"), req.Name); err != nil {
		return err
	}
	return acknowledge(c, "tag renamed")
}

func (h *Handler) deleteTag(c *gin.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.Tags.Delete(c.Request.Context(), actor(c), req.Name); err != nil {
		return err
	}
	return noContent(c)
}
