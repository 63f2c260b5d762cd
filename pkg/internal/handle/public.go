package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
)

// sharePassword 密码取自 X-Share-Password 头或 query，两处都支持匿名客户端.
func sharePassword(c *gin.Context) string {
	if p := c.GetHeader("X-Share-Password"); p != "" {
		return p
	}

	return c.Query("password")
}

// PublicShareMeta 匿名获取分享元信息，不要求密码.
//
//	@Summary		分享元信息
//	@Description	撤销或不存在返回 404，过期返回 410
//	@Tags			公开
//	@Produce		json
//	@Param			share_id	path		string	true	"分享 ID"
//	@Success		200			{object}	types.PublicShareMeta
//	@Failure		404			{object}	map[string]string
//	@Failure		410			{object}	map[string]string
//	@Router			/api/v1/public/shares/{share_id} [get]
func PublicShareMeta(c *gin.Context) {
	resp, err := service.NewShareService(c.Request.Context()).PublicMeta(c.Request.Context(), c.Param("share_id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// PublicShareView 匿名查看分享详情，受密码保护的分享需携带密码.
//
//	@Summary	查看分享
//	@Tags		公开
//	@Produce	json
//	@Param		share_id	path		string	true	"分享 ID"
//	@Param		password	query		string	false	"访问密码"
//	@Success	200			{object}	types.PublicShareView
//	@Failure	401			{object}	map[string]string
//	@Router		/api/v1/public/shares/{share_id}/view [get]
func PublicShareView(c *gin.Context) {
	resp, err := service.NewShareService(c.Request.Context()).PublicView(
		c.Request.Context(), c.Param("share_id"), sharePassword(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// PublicShareDownload 匿名下载分享的原始文件.
//
//	@Summary	下载分享
//	@Tags		公开
//	@Produce	octet-stream
//	@Param		share_id	path	string	true	"分享 ID"
//	@Param		password	query	string	false	"访问密码"
//	@Success	200			{file}	binary
//	@Router		/api/v1/public/shares/{share_id}/download [get]
func PublicShareDownload(c *gin.Context) {
	reader, doc, err := service.NewShareService(c.Request.Context()).PublicDownload(
		c.Request.Context(), c.Param("share_id"), sharePassword(c))
	if err != nil {
		fail(c, err)

		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, reader, nil)
}

// PublicVerifyCertificate 匿名校验证书编号.
//
//	@Summary		校验证书
//	@Description	查无此证书时 valid=false，不返回 404
//	@Tags			公开
//	@Produce		json
//	@Param			certificate_id	path		string	true	"证书编号"
//	@Success		200				{object}	types.VerifyCertificateResponse
//	@Router			/api/v1/public/certificates/{certificate_id} [get]
func PublicVerifyCertificate(c *gin.Context) {
	resp, err := service.NewCertificateService(c.Request.Context()).PublicVerify(c.Request.Context(), c.Param("certificate_id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// PublicSigningKey 返回服务端签名公钥（PEM），供外部独立校验文档签名.
//
//	@Summary	签名公钥
//	@Tags		公开
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/api/v1/public/signing-key [get]
func PublicSigningKey(c *gin.Context) {
	signer, err := service.GetSigner()
	if err != nil {
		fail(c, err)

		return
	}

	pemText, err := signer.PublicKeyPEM()
	if err != nil {
		fail(c, err)

		return
	}

	c.String(http.StatusOK, pemText)
}

// PublicPreview 兑换预览令牌并流式返回内容.
//
//	@Summary	预览文档
//	@Tags		公开
//	@Produce	octet-stream
//	@Param		token	path	string	true	"预览令牌"
//	@Success	200		{file}	binary
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/public/preview/{token} [get]
func PublicPreview(c *gin.Context) {
	reader, grant, err := service.NewPreviewService(c.Request.Context()).Redeem(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)

		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `inline; filename="`+grant.FileName+`"`)
	c.DataFromReader(http.StatusOK, -1, grant.ContentType, reader, nil)
}
