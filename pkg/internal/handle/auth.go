package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// Register 用户注册.
//
//	@Summary		注册
//	@Description	创建新用户并返回访问令牌
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.RegisterRequest	true	"注册参数"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Router			/api/v1/auth/register [post]
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewUserService(c.Request.Context()).Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login 用户登录.
//
//	@Summary		登录
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.LoginRequest	true	"登录参数"
//	@Success		200		{object}	types.AuthResponse
//	@Failure		401		{object}	map[string]string
//	@Router			/api/v1/auth/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewUserService(c.Request.Context()).Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me 当前用户信息.
//
//	@Summary	当前用户
//	@Tags		认证
//	@Produce	json
//	@Success	200	{object}	types.UserInfo
//	@Router		/api/v1/auth/me [get]
func Me(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	resp, err := service.NewUserService(c.Request.Context()).Me(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChangePassword 修改密码，改密后旧令牌全部失效.
//
//	@Summary	修改密码
//	@Tags		认证
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.ChangePasswordRequest	true	"改密参数"
//	@Success	200		{object}	types.AuthResponse
//	@Failure	401		{object}	map[string]string
//	@Router		/api/v1/auth/password [put]
func ChangePassword(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	var req types.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewUserService(c.Request.Context()).ChangePassword(c.Request.Context(), u.ID, &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
