package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/service"
)

// GenerateCertificate 为已验证文档签发证书.
//
//	@Summary		签发证书
//	@Description	一份文档至多一张证书，重复请求返回既有证书
//	@Tags			证书
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.GenerateCertificateResponse
//	@Failure		400	{object}	map[string]string
//	@Router			/api/v1/documents/{id}/certificate [post]
func GenerateCertificate(c *gin.Context) {
	resp, err := service.NewCertificateService(c.Request.Context()).Generate(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCertificate 查询文档的证书.
//
//	@Summary	查询证书
//	@Tags		证书
//	@Produce	json
//	@Param		id	path		string	true	"文档 ID"
//	@Success	200	{object}	types.CertificateInfo
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/documents/{id}/certificate [get]
func GetCertificate(c *gin.Context) {
	resp, err := service.NewCertificateService(c.Request.Context()).Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadCertificate 下载证书 PDF.
//
//	@Summary	下载证书
//	@Tags		证书
//	@Produce	application/pdf
//	@Param		certificate_id	path	string	true	"证书编号"
//	@Success	200				{file}	binary
//	@Router		/api/v1/certificates/{certificate_id}/download [get]
func DownloadCertificate(c *gin.Context) {
	data, cert, err := service.NewCertificateService(c.Request.Context()).Download(c.Request.Context(), actor(c), c.Param("certificate_id"))
	if err != nil {
		fail(c, err)

		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+cert.CertificateID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
