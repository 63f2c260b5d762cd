package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// AdminStats 管理台总览统计.
//
//	@Summary	全局统计
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	types.AdminStatsResponse
//	@Router		/api/v1/admin/stats [get]
func AdminStats(c *gin.Context) {
	resp, err := service.NewAdminService(c.Request.Context()).Stats(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminListUsers 用户列表.
//
//	@Summary	用户列表
//	@Tags		管理
//	@Produce	json
//	@Param		page		query		int		false	"页码"
//	@Param		page_size	query		int		false	"每页条数"
//	@Param		role		query		string	false	"角色过滤"
//	@Param		search		query		string	false	"邮箱/名字模糊匹配"
//	@Success	200			{object}	types.ListUsersResponse
//	@Router		/api/v1/admin/users [get]
func AdminListUsers(c *gin.Context) {
	var req types.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewAdminService(c.Request.Context()).ListUsers(c.Request.Context(), actor(c), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminCreateUser 管理员创建账户，可带角色.
//
//	@Summary	创建用户
//	@Tags		管理
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RegisterRequest	true	"用户参数"
//	@Param		role	query		string					false	"角色"
//	@Success	200		{object}	types.UserInfo
//	@Router		/api/v1/admin/users [post]
func AdminCreateUser(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewAdminService(c.Request.Context()).CreateUser(
		c.Request.Context(), actor(c), &req, c.Query("role"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminUpdateRole 变更用户角色.
//
//	@Summary	变更角色
//	@Tags		管理
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"用户 ID"
//	@Param		body	body		types.UpdateRoleRequest	true	"角色参数"
//	@Success	200		{object}	types.UserInfo
//	@Failure	400		{object}	map[string]string
//	@Router		/api/v1/admin/users/{id}/role [put]
func AdminUpdateRole(c *gin.Context) {
	var req types.UpdateRoleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewAdminService(c.Request.Context()).UpdateRole(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminSetBan 封禁或解封用户.
//
//	@Summary	封禁/解封
//	@Tags		管理
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"用户 ID"
//	@Param		body	body		types.SetBanRequest	true	"封禁参数"
//	@Success	200		{object}	types.UserInfo
//	@Router		/api/v1/admin/users/{id}/ban [put]
func AdminSetBan(c *gin.Context) {
	var req types.SetBanRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewAdminService(c.Request.Context()).SetBan(c.Request.Context(), actor(c), c.Param("id"), req.Banned)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminResetPassword 重置用户密码并作废其全部令牌.
//
//	@Summary	重置密码
//	@Tags		管理
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"用户 ID"
//	@Param		body	body		types.ResetPasswordRequest	true	"新密码"
//	@Success	200		{object}	map[string]string
//	@Router		/api/v1/admin/users/{id}/password [put]
func AdminResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	if err := service.NewAdminService(c.Request.Context()).ResetPassword(c.Request.Context(), actor(c), c.Param("id"), &req); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// AdminDeleteUser 级联删除用户及其全部数据.
//
//	@Summary	删除用户
//	@Tags		管理
//	@Produce	json
//	@Param		id	path		string	true	"用户 ID"
//	@Success	200	{object}	map[string]string
//	@Router		/api/v1/admin/users/{id} [delete]
func AdminDeleteUser(c *gin.Context) {
	if err := service.NewAdminService(c.Request.Context()).DeleteUser(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
