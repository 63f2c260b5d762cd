// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：ds.<域>.<动作>，尽量稳定且向后兼容.
// 域：document(文档)、certificate(证书)、share(分享)
// 动作：uploaded/analyzed/reviewed/assigned/deleted/issued/created/revoked

const (
	// 文档领域.
	TopicDocumentUploaded = "ds.document.uploaded" // 文件写入对象存储且记录入库后触发
	TopicDocumentAnalyzed = "ds.document.analyzed" // AI 分析完成（含自动验证路径）
	TopicDocumentReviewed = "ds.document.reviewed" // 人工或自动审核结论产生
	TopicDocumentAssigned = "ds.document.assigned" // 管理员指派审核员
	TopicDocumentDeleted  = "ds.document.deleted"  // 文档被删除（软删或硬删）

	// 证书领域.
	TopicCertificateIssued = "ds.certificate.issued" // 证书 PDF 生成并入库

	// 分享领域.
	TopicShareCreated = "ds.share.created"
	TopicShareRevoked = "ds.share.revoked"
)

// 主题分组，用于批量订阅.
var (
	// DocumentTopics 文档相关主题集合.
	DocumentTopics = []string{
		TopicDocumentUploaded, TopicDocumentAnalyzed, TopicDocumentReviewed,
		TopicDocumentAssigned, TopicDocumentDeleted,
	}

	// NotifyTopics 驱动用户通知的主题集合.
	NotifyTopics = []string{
		TopicDocumentReviewed, TopicCertificateIssued, TopicShareCreated,
	}
)
