package handle

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/types"
)

// UploadDocument 上传文档.
//
//	@Summary		上传文档
//	@Description	multipart 上传，内容按 SHA-256 去重，同一用户重复上传返回 409
//	@Tags			文档
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"文件"
//	@Param			category	formData	string	false	"分类"
//	@Success		200			{object}	types.UploadDocumentResponse
//	@Failure		400			{object}	map[string]string
//	@Failure		409			{object}	map[string]string
//	@Router			/api/v1/documents [post]
func UploadDocument(c *gin.Context) {
	// 提前限制请求体，超限的读在入口就被截断
	maxBytes := configs.GetConfig().Upload.MaxSizeBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1)

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)

		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)

		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, err)

		return
	}

	contentType := fh.Header.Get("Content-Type")

	resp, err := service.NewDocumentService(c.Request.Context()).Upload(
		c.Request.Context(), actor(c),
		fh.Filename, contentType, c.PostForm("category"), data)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListDocuments 文档列表.
//
//	@Summary	文档列表
//	@Tags		文档
//	@Produce	json
//	@Param		page		query		int		false	"页码"
//	@Param		page_size	query		int		false	"每页条数"
//	@Param		category	query		string	false	"分类过滤"
//	@Param		status		query		string	false	"验证状态过滤"
//	@Param		search		query		string	false	"文件名模糊匹配"
//	@Param		deleted		query		bool	false	"列出回收站"
//	@Success	200			{object}	types.ListDocumentsResponse
//	@Router		/api/v1/documents [get]
func ListDocuments(c *gin.Context) {
	var req types.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewDocumentService(c.Request.Context()).List(c.Request.Context(), actor(c), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDocument 文档详情.
//
//	@Summary	文档详情
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	types.DocumentInfo
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/documents/{id} [get]
func GetDocument(c *gin.Context) {
	resp, err := service.NewDocumentService(c.Request.Context()).Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadDocument 下载原始文件.
//
//	@Summary	下载文档
//	@Tags		文档
//	@Produce	octet-stream
//	@Param		id	path	string	true	"文档 ID"
//	@Success	200	{file}	binary
//	@Router		/api/v1/documents/{id}/download [get]
func DownloadDocument(c *gin.Context) {
	reader, doc, err := service.NewDocumentService(c.Request.Context()).Download(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, reader, nil)
}

// UpdateDocument 更新文档元信息.
//
//	@Summary	更新文档
//	@Tags		文档
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"文档 ID"
//	@Param		body	body		types.UpdateDocumentRequest	true	"更新参数"
//	@Success	200		{object}	types.DocumentInfo
//	@Router		/api/v1/documents/{id} [put]
func UpdateDocument(c *gin.Context) {
	var req types.UpdateDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := service.NewDocumentService(c.Request.Context()).Update(c.Request.Context(), actor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteDocument 软删除（移入回收站）.
//
//	@Summary	删除文档
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	map[string]string
//	@Router		/api/v1/documents/{id} [delete]
func DeleteDocument(c *gin.Context) {
	if err := service.NewDocumentService(c.Request.Context()).SoftDelete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document moved to trash"})
}

// RestoreDocument 从回收站恢复.
//
//	@Summary	恢复文档
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	types.DocumentInfo
//	@Router		/api/v1/documents/{id}/restore [post]
func RestoreDocument(c *gin.Context) {
	resp, err := service.NewDocumentService(c.Request.Context()).Restore(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// PurgeDocument 永久删除记录与对象.
//
//	@Summary	永久删除文档
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	map[string]string
//	@Router		/api/v1/documents/{id}/purge [delete]
func PurgeDocument(c *gin.Context) {
	if err := service.NewDocumentService(c.Request.Context()).HardDelete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document permanently deleted"})
}

// ListCategories 分类统计.
//
//	@Summary	分类统计
//	@Tags		文档
//	@Produce	json
//	@Success	200	{object}	types.ListCategoriesResponse
//	@Router		/api/v1/documents/categories [get]
func ListCategories(c *gin.Context) {
	resp, err := service.NewDocumentService(c.Request.Context()).Categories(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GrantPreview 签发短时预览令牌.
//
//	@Summary	预览令牌
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	types.PreviewTokenResponse
//	@Router		/api/v1/documents/{id}/preview [post]
func GrantPreview(c *gin.Context) {
	resp, err := service.NewPreviewService(c.Request.Context()).Grant(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// queryInt 解析查询参数中的整数，缺省返回 def.
func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
