package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// AnalyzeDocument 真实性分析，重复调用返回缓存结果.
//
//	@Summary		分析文档
//	@Description	对已提取文本的文档做真实性分析；已分析过的直接返回缓存结果
//	@Tags			验证
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.AnalyzeResponse
//	@Failure		400	{object}	map[string]string
//	@Failure		502	{object}	map[string]string
//	@Router			/api/v1/documents/{id}/analyze [post]
func AnalyzeDocument(c *gin.Context) {
	resp, err := service.NewVerificationService(c.Request.Context()).Analyze(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// BatchAnalyze 批量分析.
//
//	@Summary	批量分析
//	@Tags		验证
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.BatchAnalyzeRequest	true	"文档 ID 列表"
//	@Success	200		{object}	types.BatchAnalyzeResponse
//	@Router		/api/v1/documents/batch/analyze [post]
func BatchAnalyze(c *gin.Context) {
	var req types.BatchAnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewVerificationService(c.Request.Context()).BatchAnalyze(c.Request.Context(), actor(c), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RequestVerification 发起验证，应用自动策略.
//
//	@Summary		发起验证
//	@Description	未分析的先分析；得分大于 70 自动通过，否则进入人工队列
//	@Tags			验证
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.RequestVerificationResponse
//	@Router			/api/v1/documents/{id}/verify [post]
func RequestVerification(c *gin.Context) {
	resp, err := service.NewVerificationService(c.Request.Context()).RequestVerification(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReviewHistory 文档审核历史，按写入顺序.
//
//	@Summary	审核历史
//	@Tags		验证
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	types.ReviewHistoryResponse
//	@Router		/api/v1/documents/{id}/history [get]
func ReviewHistory(c *gin.Context) {
	resp, err := service.NewReviewService(c.Request.Context()).History(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
