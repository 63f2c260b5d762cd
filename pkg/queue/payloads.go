package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// DocumentRef 标识一份文档及其归属.
type DocumentRef struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	FileName string `json:"file_name,omitempty"`
	FileHash string `json:"file_hash,omitempty"`
}

// DocumentUploadedPayload 文件已入库.
type DocumentUploadedPayload struct {
	Document    DocumentRef `json:"document"`
	Size        int64       `json:"size,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Category    string      `json:"category,omitempty"`
}

// DocumentAnalyzedPayload AI 分析完成.
type DocumentAnalyzedPayload struct {
	Document          DocumentRef `json:"document"`
	AuthenticityScore float64     `json:"authenticity_score"`
	RiskLevel         string      `json:"risk_level"`
	Cached            bool        `json:"cached,omitempty"` // 命中既有结果而非重新计算
}

// DocumentReviewedPayload 审核结论产生。Automatic 标记自动验证路径，
// 该路径不产生审核历史记录.
type DocumentReviewedPayload struct {
	Document     DocumentRef `json:"document"`
	Decision     string      `json:"decision"`
	Status       string      `json:"status"`
	ReviewerID   string      `json:"reviewer_id,omitempty"`
	ReviewerName string      `json:"reviewer_name,omitempty"`
	Automatic    bool        `json:"automatic,omitempty"`
}

// DocumentAssignedPayload 管理员指派审核员.
type DocumentAssignedPayload struct {
	Document   DocumentRef `json:"document"`
	VerifierID string      `json:"verifier_id"`
	AssignedBy string      `json:"assigned_by"`
}

// DocumentDeletedPayload 文档被删除.
type DocumentDeletedPayload struct {
	Document DocumentRef `json:"document"`
	Hard     bool        `json:"hard,omitempty"` // 硬删除（记录与文件一并移除）
}

// CertificateIssuedPayload 证书签发完成.
type CertificateIssuedPayload struct {
	Document      DocumentRef `json:"document"`
	CertificateID string      `json:"certificate_id"`
}

// ShareCreatedPayload 分享链接创建.
type ShareCreatedPayload struct {
	Document DocumentRef `json:"document"`
	ShareID  string      `json:"share_id"`
	ExpireAt *time.Time  `json:"expire_at,omitempty"`
}

// ShareRevokedPayload 分享链接撤销.
type ShareRevokedPayload struct {
	ShareID string `json:"share_id"`
	OwnerID string `json:"owner_id"`
}
