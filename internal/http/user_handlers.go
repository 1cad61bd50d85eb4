package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aboard/internal/service"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Subscribing bool   `json:"subscribing"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	ChangePassword bool   `json:"change_pw"`
	Password       string `json:"password"`
	NewPassword    string `json:"new_password"`
	Subscribing    *bool  `json:"subscribing"`
}

type userListQuery struct {
	pageQuery
	Email string `form:"email"`
}

func (h *Handler) signup(c *gin.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Users.Signup(c.Request.Context(), service.SignupInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Subscribing: req.Subscribing,
	})
	if err != nil {
		return err
	}
	return created(c, "signed up", user.ID)
}

func (h *Handler) login(c *gin.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := h.svc.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
	return nil
}

func (h *Handler) userInfo(c *gin.Context) error {
	user, err := h.svc.Users.Info(c.Request.Context(), actor(c))
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, userToResponse(*user))
	return nil
}

func (h *Handler) updateUser(c *gin.Context) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	err := h.svc.Users.Update(c.Request.Context(), actor(c), service.UpdateUserInput{
		Subscribing:    req.Subscribing,
		ChangePassword: req.ChangePassword,
		Password:       req.Password,
		NewPassword:    req.NewPassword,
	})
	if err != nil {
		return err
	}
	return acknowledge(c, "user updated")
}

func (h *Handler) withdraw(c *gin.Context) error {
	if err := h.svc.Users.Withdraw(c.Request.Context(), actor(c)); err != nil {
		return err
	}
	return noContent(c)
}

func (h *Handler) listUsers(c *gin.Context) error {
	var q userListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := q.page()
	if err != nil {
		return err
	}
	users, err := h.svc.Users.List(c.Request.Context(), actor(c), q.Email, page)
	if err != nil {
		return err
	}
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
	return nil
}
