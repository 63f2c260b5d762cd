package queue

import "context"

// -------------------------- 基于业务封装 events --------------------------

// Publisher 事件发布方需要的最小能力，storage/mq 的 Client 满足该接口.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*WatermillMessage) error
}

// PublishDocumentUploaded 发布 ds.document.uploaded 事件.
func PublishDocumentUploaded(ctx context.Context, pub Publisher, payload DocumentUploadedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentUploaded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicDocumentUploaded, msg)
}

// PublishDocumentAnalyzed 发布 ds.document.analyzed 事件.
func PublishDocumentAnalyzed(ctx context.Context, pub Publisher, payload DocumentAnalyzedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentAnalyzed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicDocumentAnalyzed, msg)
}

// PublishDocumentReviewed 发布 ds.document.reviewed 事件。
// 自动验证路径与人工审核共用该主题，由 Automatic 字段区分.
func PublishDocumentReviewed(ctx context.Context, pub Publisher, payload DocumentReviewedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentReviewed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicDocumentReviewed, msg)
}

// PublishDocumentAssigned 发布 ds.document.assigned 事件.
func PublishDocumentAssigned(ctx context.Context, pub Publisher, payload DocumentAssignedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentAssigned, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicDocumentAssigned, msg)
}

// PublishDocumentDeleted 发布 ds.document.deleted 事件.
func PublishDocumentDeleted(ctx context.Context, pub Publisher, payload DocumentDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicDocumentDeleted, msg)
}

// PublishCertificateIssued 发布 ds.certificate.issued 事件.
func PublishCertificateIssued(ctx context.Context, pub Publisher, payload CertificateIssuedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicCertificateIssued, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicCertificateIssued, msg)
}

// PublishShareCreated 发布 ds.share.created 事件.
func PublishShareCreated(ctx context.Context, pub Publisher, payload ShareCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicShareCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicShareCreated, msg)
}

// PublishShareRevoked 发布 ds.share.revoked 事件.
func PublishShareRevoked(ctx context.Context, pub Publisher, payload ShareRevokedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicShareRevoked, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, TopicShareRevoked, msg)
}
