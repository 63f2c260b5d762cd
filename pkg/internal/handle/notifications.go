package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// GetPreferences 通知偏好，首次访问时按默认值创建.
//
//	@Summary	通知偏好
//	@Tags		通知
//	@Produce	json
//	@Success	200	{object}	types.NotificationPreferencesBody
//	@Router		/api/v1/notifications/preferences [get]
func GetPreferences(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	resp, err := service.NewNotifyService(c.Request.Context()).Preferences(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePreferences 整体覆盖通知偏好.
//
//	@Summary	更新偏好
//	@Tags		通知
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.NotificationPreferencesBody	true	"偏好"
//	@Success	200		{object}	types.NotificationPreferencesBody
//	@Router		/api/v1/notifications/preferences [put]
func UpdatePreferences(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	var req types.NotificationPreferencesBody
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewNotifyService(c.Request.Context()).UpdatePreferences(c.Request.Context(), u.ID, &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListNotifications 通知列表.
//
//	@Summary	通知列表
//	@Tags		通知
//	@Produce	json
//	@Param		limit	query		int	false	"条数上限"
//	@Success	200		{object}	types.ListNotificationsResponse
//	@Router		/api/v1/notifications [get]
func ListNotifications(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	resp, err := service.NewNotifyService(c.Request.Context()).List(c.Request.Context(), u.ID, queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// MarkNotificationRead 标记单条通知已读.
//
//	@Summary	标记已读
//	@Tags		通知
//	@Produce	json
//	@Param		id	path		int	true	"通知 ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/notifications/{id}/read [put]
func MarkNotificationRead(c *gin.Context) {
	u := actor(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)

		return
	}

	if err := service.NewNotifyService(c.Request.Context()).MarkRead(c.Request.Context(), u.ID, uint(id)); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "read"})
}
