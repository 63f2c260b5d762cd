package types

import "time"

// CertificateInfo 证书的对外视图.
type CertificateInfo struct {
	// CertificateID 证书编号，形如 CERT-XXXXXXXXXXXX
	CertificateID string    `json:"certificate_id"`
	DocumentID    string    `json:"document_id"`
	FileName      string    `json:"file_name"`
	FileHash      string    `json:"file_hash"`
	IssuedAt      time.Time `json:"issued_at"`
}

// GenerateCertificateResponse 证书生成响应体.
type GenerateCertificateResponse struct {
	Certificate CertificateInfo `json:"certificate"`
	// Existing 命中既有证书而非新签发
	Existing bool `json:"existing,omitempty"`
}

// VerifyCertificateResponse 匿名验证证书的响应体.
type VerifyCertificateResponse struct {
	Valid       bool             `json:"valid"`
	Certificate *CertificateInfo `json:"certificate,omitempty"`
	// Status 关联文档的当前验证状态
	Status string `json:"status,omitempty"`
}
