package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aboard/internal/auth"
	"aboard/internal/domain"
	"aboard/internal/service"
)

// Services groups what the handlers dispatch to. Attachments is nil when storage is disabled.
type Services struct {
	Users       service.UserService
	Posts       service.PostService
	Comments    service.CommentService
	Categories  service.CategoryService
	Tags        service.TagService
	Attachments service.AttachmentService
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	svc      Services
	resolver *auth.Resolver
	logger   *logrus.Logger
}

func NewHandler(svc Services, resolver *auth.Resolver, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		svc:      svc,
		resolver: resolver,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	user := router.Group("/user")
	{
		user.POST("/signup", h.handle(h.signup))
		user.POST("/login", h.handle(h.login))
		user.GET("/info", h.handle(h.userInfo, h.authenticated))
		user.PUT("/update", h.handle(h.updateUser, h.authenticated))
		user.DELETE("/withdraw", h.handle(h.withdraw, h.authenticated))
		user.GET("/list", h.handle(h.listUsers, h.authenticated, h.privileged))
	}

	category := router.Group("/category")
	{
		category.GET("/list", h.handle(h.listCategories, h.authenticated))
		category.POST("/add", h.handle(h.addCategory, h.authenticated, h.privileged))
		category.PUT("/:name", h.handle(h.renameCategory, h.authenticated, h.privileged))
		category.DELETE("/delete", h.handle(h.deleteCategory, h.authenticated, h.privileged))
	}

	tag := router.Group("/tag")
	{
		tag.GET("/list", h.handle(h.listTags, h.authenticated))
		tag.POST("/add", h.handle(h.addTag, h.authenticated, h.privileged))
		tag.PUT("/:name", h.handle(h.renameTag, h.authenticated, h.privileged))
		tag.DELETE("/delete", h.handle(h.deleteTag, h.authenticated, h.privileged))
	}

	post := router.Group("/post")
	{
		post.GET("", h.handle(h.listPosts, h.authenticated))
		post.POST("", h.handle(h.createPost, h.authenticated))
		post.GET("/:post_id", h.handle(h.getPost, h.authenticated))
		post.PUT("/:post_id", h.handle(h.updatePost, h.authenticated))
		post.DELETE("/:post_id", h.handle(h.deletePost, h.authenticated))
		post.PUT("/:post_id/like", h.handle(h.likePost, h.authenticated))
		post.DELETE("/:post_id/like", h.handle(h.unlikePost, h.authenticated))
		post.GET("/:post_id/comment", h.handle(h.listComments, h.authenticated))
		post.POST("/:post_id/comment", h.handle(h.createComment, h.authenticated))
		if h.svc.Attachments != nil {
			post.GET("/:post_id/attachment", h.handle(h.listAttachments, h.authenticated))
			post.POST("/:post_id/attachment", h.handle(h.uploadAttachment, h.authenticated))
			post.DELETE("/:post_id/attachment", h.handle(h.deleteAttachments, h.authenticated))
		}
	}

	comment := router.Group("/comment")
	{
		comment.GET("/:comment_id", h.handle(h.getComment, h.authenticated))
		comment.PUT("/:comment_id", h.handle(h.updateComment, h.authenticated))
		comment.DELETE("/:comment_id", h.handle(h.deleteComment, h.authenticated))
		comment.PUT("/:comment_id/like", h.handle(h.likeComment, h.authenticated))
		comment.DELETE("/:comment_id/like", h.handle(h.unlikeComment, h.authenticated))
		comment.GET("/:comment_id/reply", h.handle(h.listReplies, h.authenticated))
		comment.POST("/:comment_id/reply", h.handle(h.createReply, h.authenticated))
	}

	router.NoRoute(func(c *gin.Context) {
		h.writeError(c, domain.NotFound("resource not found"))
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+auth.HeaderName)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type pageQuery struct {
	PageNo   int `form:"page_no"`
	PageSize int `form:"page_size"`
}

func (q pageQuery) page() (domain.Page, error) {
	return domain.NewPage(q.PageNo, q.PageSize)
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func created(c *gin.Context, message string, id int64) error {
	c.JSON(http.StatusCreated, messageResponse{Message: message, ID: id})
	return nil
}

func acknowledge(c *gin.Context, message string) error {
	c.JSON(http.StatusOK, messageResponse{Message: message})
	return nil
}

func noContent(c *gin.Context) error {
	c.Status(http.StatusNoContent)
	return nil
}

// bind decodes a JSON body; schema failures are reported as 422.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return domain.ValidationFailed("invalid request body: " + err.Error())
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return domain.ValidationFailed("invalid query: " + err.Error())
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationFailed("invalid " + name)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
