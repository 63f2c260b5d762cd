package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// CreateShare 为文档创建分享链接.
//
//	@Summary		创建分享
//	@Description	为自己的文档生成公开访问短链，可选过期与密码
//	@Tags			分享
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"文档 ID"
//	@Param			body	body		types.CreateShareRequest	true	"创建参数"
//	@Success		200		{object}	types.CreateShareResponse
//	@Failure		400		{object}	map[string]string
//	@Router			/api/v1/documents/{id}/share [post]
func CreateShare(c *gin.Context) {
	var req types.CreateShareRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewShareService(c.Request.Context()).Create(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListShares 当前用户的分享列表.
//
//	@Summary	分享列表
//	@Tags		分享
//	@Produce	json
//	@Success	200	{object}	types.ListSharesResponse
//	@Router		/api/v1/shares [get]
func ListShares(c *gin.Context) {
	resp, err := service.NewShareService(c.Request.Context()).List(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RevokeShare 撤销分享，撤销后匿名访问与不存在同形.
//
//	@Summary	撤销分享
//	@Tags		分享
//	@Produce	json
//	@Param		share_id	path		string	true	"分享 ID"
//	@Success	200			{object}	map[string]string
//	@Failure	404			{object}	map[string]string
//	@Router		/api/v1/shares/{share_id} [delete]
func RevokeShare(c *gin.Context) {
	if err := service.NewShareService(c.Request.Context()).Revoke(c.Request.Context(), actor(c), c.Param("share_id")); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "share revoked"})
}
