package model

import (
	"time"
)

// Certificate 验证证书模型。DocumentID 上的唯一索引在库层面保证一文档一证书，
// 重复生成请求返回既有证书而不是新建.
type Certificate struct {
	CertificateID string    `gorm:"primaryKey;size:64"        json:"certificate_id"`
	DocumentID    string    `gorm:"size:36;uniqueIndex"       json:"document_id"`
	OwnerID       string    `gorm:"size:36;index"             json:"owner_id"`
	FileName      string    `gorm:"size:512"                  json:"file_name"`
	FileHash      string    `gorm:"size:64"                   json:"file_hash"`
	Signature     string    `gorm:"type:text"                 json:"-"`
	ObjectKey     string    `gorm:"size:1024"                 json:"-"`
	IssuedAt      time.Time `json:"issued_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
