package service

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/model"
)

// renderCertificatePDF 渲染 A4 证书：标题、签发方、文档指纹表格，
// 右下角放指向公开校验地址的二维码.
func renderCertificatePDF(cert *model.Certificate, cfg configs.CertificateConfig) ([]byte, error) {
	verifyURL := fmt.Sprintf("%s/%s", cfg.VerifyBaseURL, cert.CertificateID)

	qrPNG, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Certificate of Verification", false)
	pdf.AddPage()

	// 页眉
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 20, "Certificate of Verification", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Issued by "+cfg.Issuer, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetDrawColor(60, 60, 60)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(10)

	// 字段表格
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Courier", "", 9)
		pdf.MultiCell(120, 8, value, "", "L", false)
	}

	row("Certificate ID", cert.CertificateID)
	row("Document", cert.FileName)
	row("SHA-256", cert.FileHash)
	row("Issued at", cert.IssuedAt.Format("2006-01-02 15:04:05 MST"))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Digital signature (RSA-PSS)", "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 6)
	pdf.MultiCell(170, 4, cert.Signature, "", "L", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(110, 5,
		"This document's content hash was signed at upload time and its authenticity "+
			"was confirmed through the verification workflow. Scan the code or visit the "+
			"URL below to check the current standing of this certificate.", "", "L", false)
	pdf.Ln(2)
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(0, 5, verifyURL, "", 1, "L", false, 0, "")

	// 二维码
	pdf.RegisterImageOptionsReader("verify-qr",
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("verify-qr", 150, 215, 40, 40, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}
