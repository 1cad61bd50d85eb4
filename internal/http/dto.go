package http

import "aboard/internal/domain"

type userRefResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type UserResponse struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Subscribing bool   `json:"subscribing"`
	IsMaster    bool   `json:"is_master"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type PostResponse struct {
	ID         int64           `json:"post_id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Categories []string        `json:"categories"`
	LikesCnt   int             `json:"likes_cnt"`
	Liked      bool            `json:"liked"`
	CreatedBy  userRefResponse `json:"created_by"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

type CommentResponse struct {
	ID        int64           `json:"comment_id"`
	PostID    int64           `json:"post_id"`
	ParentID  *int64          `json:"parent_id,omitempty"`
	Content   string          `json:"content"`
	LikesCnt  int             `json:"likes_cnt"`
	Liked     bool            `json:"liked"`
	CreatedBy userRefResponse `json:"created_by"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type CategoryResponse struct {
	ID        int64           `json:"category_id"`
	Name      string          `json:"name"`
	CreatedBy userRefResponse `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

type TagResponse struct {
	ID        int64           `json:"tag_id"`
	Name      string          `json:"name"`
	CreatedBy userRefResponse `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

type AttachmentResponse struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Size         int64   `json:"size"`
	URL          string  `json:"url"`
	LastModified *string `json:"last_modified,omitempty"`
}

func refToResponse(ref domain.UserRef) userRefResponse {
	return userRefResponse{Email: ref.Email, Name: ref.Name}
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		Email:       user.Email,
		Name:        user.Name,
		Subscribing: user.Subscribing,
		IsMaster:    user.IsMaster,
		CreatedAt:   formatTime(user.CreatedAt),
		UpdatedAt:   formatTime(user.UpdatedAt),
	}
}

func postToResponse(post domain.Post) PostResponse {
	categories := post.Categories
	if categories == nil {
		categories = []string{}
	}
	return PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Categories: categories,
		LikesCnt:   post.LikesCnt,
		Liked:      post.Liked,
		CreatedBy:  refToResponse(post.CreatedBy),
		CreatedAt:  formatTime(post.CreatedAt),
		UpdatedAt:  formatTime(post.UpdatedAt),
	}
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		LikesCnt:  comment.LikesCnt,
		Liked:     comment.Liked,
		CreatedBy: refToResponse(comment.CreatedBy),
		CreatedAt: formatTime(comment.CreatedAt),
		UpdatedAt: formatTime(comment.UpdatedAt),
	}
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	return resp
}

func attachmentToResponse(a domain.Attachment) AttachmentResponse {
	resp := AttachmentResponse{Key: a.Key, Name: a.Name, Size: a.Size, URL: a.URL}
	if a.LastModified != nil {
		ts := formatTime(*a.LastModified)
		resp.LastModified = &ts
	}
	return resp
}
