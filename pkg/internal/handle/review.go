package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// ManualReview 人工审核.
//
//	@Summary		人工审核
//	@Description	审核员或管理员给出结论，追加不可变审核记录
//	@Tags			审核
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"文档 ID"
//	@Param			body	body		types.ManualReviewRequest	true	"审核参数"
//	@Success		200		{object}	types.ReviewResponse
//	@Failure		403		{object}	map[string]string
//	@Router			/api/v1/review/{id} [post]
func ManualReview(c *gin.Context) {
	var req types.ManualReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewReviewService(c.Request.Context()).ManualReview(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// QuickReview 快速审核，仅接受 pending 或 flagged 状态.
//
//	@Summary	快速审核
//	@Tags		审核
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"文档 ID"
//	@Param		body	body		types.QuickReviewRequest	true	"审核参数"
//	@Success	200		{object}	types.ReviewResponse
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/review/{id}/quick [post]
func QuickReview(c *gin.Context) {
	var req types.QuickReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewReviewService(c.Request.Context()).QuickReview(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AssignVerifier 管理员指派审核员.
//
//	@Summary	指派审核员
//	@Tags		审核
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"文档 ID"
//	@Param		body	body		types.AssignVerifierRequest	true	"指派参数"
//	@Success	200		{object}	types.DocumentInfo
//	@Failure	403		{object}	map[string]string
//	@Router		/api/v1/review/{id}/assign [post]
func AssignVerifier(c *gin.Context) {
	var req types.AssignVerifierRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewReviewService(c.Request.Context()).AssignVerifier(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReviewQueue 待审核队列.
//
//	@Summary	审核队列
//	@Tags		审核
//	@Produce	json
//	@Param		page		query		int	false	"页码"
//	@Param		page_size	query		int	false	"每页条数"
//	@Success	200			{object}	types.ReviewQueueResponse
//	@Router		/api/v1/review/queue [get]
func ReviewQueue(c *gin.Context) {
	resp, err := service.NewVerifierService(c.Request.Context()).Queue(
		c.Request.Context(), actor(c),
		queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifierStats 审核员个人统计.
//
//	@Summary	审核员统计
//	@Tags		审核
//	@Produce	json
//	@Success	200	{object}	types.VerifierStatsResponse
//	@Router		/api/v1/review/stats [get]
func VerifierStats(c *gin.Context) {
	resp, err := service.NewVerifierService(c.Request.Context()).Stats(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifierHistory 审核员个人历史.
//
//	@Summary	审核员历史
//	@Tags		审核
//	@Produce	json
//	@Param		limit	query		int	false	"条数上限"
//	@Success	200		{object}	types.ReviewHistoryResponse
//	@Router		/api/v1/review/history [get]
func VerifierHistory(c *gin.Context) {
	resp, err := service.NewVerifierService(c.Request.Context()).History(
		c.Request.Context(), actor(c), queryInt(c, "limit", 0))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
