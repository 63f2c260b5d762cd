package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/mq"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/queue"
)

// NotifyService 负责通知偏好与通知记录.
type NotifyService struct {
	dbc *db.Client
}

// NewNotifyService 创建 NotifyService 实例.
func NewNotifyService(c context.Context) *NotifyService {
	svc := &NotifyService{dbc: ctxPkg.GetDBClient(c)}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, NotifyService features limited")
	}

	return svc
}

// Preferences 读取用户偏好，首次访问时按默认值建档.
func (s *NotifyService) Preferences(ctx context.Context, userID string) (*types.NotificationPreferencesBody, error) {
	prefs, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &types.NotificationPreferencesBody{
		EmailEnabled:      prefs.EmailEnabled,
		ReviewUpdates:     prefs.ReviewUpdates,
		ShareActivity:     prefs.ShareActivity,
		CertificateIssued: prefs.CertificateIssued,
	}, nil
}

func (s *NotifyService) loadOrCreate(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	var prefs model.NotificationPreferences

	err := s.dbc.GetDB().WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err == nil {
		return &prefs, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := model.DefaultNotificationPreferences(userID)
	if err := s.dbc.GetDB().WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}

	return fresh, nil
}

// UpdatePreferences 整体覆盖用户偏好.
func (s *NotifyService) UpdatePreferences(ctx context.Context, userID string,
	req *types.NotificationPreferencesBody,
) (*types.NotificationPreferencesBody, error) {
	if _, err := s.loadOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	err := s.dbc.GetDB().WithContext(ctx).Model(&model.NotificationPreferences{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"email_enabled":      req.EmailEnabled,
			"review_updates":     req.ReviewUpdates,
			"share_activity":     req.ShareActivity,
			"certificate_issued": req.CertificateIssued,
		}).Error
	if err != nil {
		return nil, err
	}

	return req, nil
}

// List 用户的通知列表，新的在前，附带未读计数.
func (s *NotifyService) List(ctx context.Context, userID string, limit int) (*types.ListNotificationsResponse, error) {
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	var rows []model.Notification

	err := s.dbc.GetDB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ListNotificationsResponse{
		Notifications: make([]types.NotificationInfo, 0, len(rows)),
	}

	for _, n := range rows {
		resp.Notifications = append(resp.Notifications, types.NotificationInfo{
			ID:         n.ID,
			Topic:      n.Topic,
			DocumentID: n.DocumentID,
			Message:    n.Message,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}

	err = s.dbc.GetDB().WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&resp.Unread).Error
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// MarkRead 标记单条通知为已读.
func (s *NotifyService) MarkRead(ctx context.Context, userID string, id uint) error {
	res := s.dbc.GetDB().WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound("notification not found")
	}

	return nil
}

// record 写入一条通知记录，消费端调用.
func (s *NotifyService) record(ctx context.Context, userID, topic, docID, msg string) {
	n := model.Notification{
		UserID:     userID,
		Topic:      topic,
		DocumentID: docID,
		Message:    msg,
	}

	if err := s.dbc.GetDB().WithContext(ctx).Create(&n).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("user", userID).Msg("record notification failed")
	}
}

// Notifier 订阅生命周期事件并按用户偏好落通知.
type Notifier struct {
	svc *NotifyService
	mqc *mq.Client
}

// NewNotifier 创建事件消费者.
func NewNotifier(c context.Context) *Notifier {
	return &Notifier{
		svc: NewNotifyService(c),
		mqc: ctxPkg.GetMQClient(c),
	}
}

// Start 启动订阅循环，ctx 取消时各 goroutine 随通道关闭退出.
func (n *Notifier) Start(ctx context.Context) error {
	if n.mqc == nil {
		return errors.New("mq client not initialized")
	}

	for _, topic := range queue.NotifyTopics {
		ch, err := n.mqc.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go n.consume(ctx, topic, ch)
	}

	nlog.Logger().Info().Strs("topics", queue.NotifyTopics).Msg("notifier started")

	return nil
}

func (n *Notifier) consume(ctx context.Context, topic string, ch <-chan *queue.WatermillMessage) {
	for msg := range ch {
		n.handle(ctx, topic, msg)
		msg.Ack()
	}
}

func (n *Notifier) handle(ctx context.Context, topic string, msg *queue.WatermillMessage) {
	switch topic {
	case queue.TopicDocumentReviewed:
		env, err := queue.ParseWatermillMessage[queue.DocumentReviewedPayload](msg)
		if err != nil {
			nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("unparseable event")

			return
		}

		prefs, err := n.svc.loadOrCreate(ctx, env.Payload.Document.OwnerID)
		if err != nil || !prefs.ReviewUpdates {
			return
		}

		text := fmt.Sprintf("Your document %q was %s", env.Payload.Document.FileName, env.Payload.Decision)
		if env.Payload.Automatic {
			text = fmt.Sprintf("Your document %q passed automatic verification", env.Payload.Document.FileName)
		}

		n.svc.record(ctx, env.Payload.Document.OwnerID, topic, env.Payload.Document.ID, text)
	case queue.TopicCertificateIssued:
		env, err := queue.ParseWatermillMessage[queue.CertificateIssuedPayload](msg)
		if err != nil {
			nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("unparseable event")

			return
		}

		prefs, err := n.svc.loadOrCreate(ctx, env.Payload.Document.OwnerID)
		if err != nil || !prefs.CertificateIssued {
			return
		}

		n.svc.record(ctx, env.Payload.Document.OwnerID, topic, env.Payload.Document.ID,
			fmt.Sprintf("Certificate %s issued for %q", env.Payload.CertificateID, env.Payload.Document.FileName))
	case queue.TopicShareCreated:
		env, err := queue.ParseWatermillMessage[queue.ShareCreatedPayload](msg)
		if err != nil {
			nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("unparseable event")

			return
		}

		prefs, err := n.svc.loadOrCreate(ctx, env.Payload.Document.OwnerID)
		if err != nil || !prefs.ShareActivity {
			return
		}

		n.svc.record(ctx, env.Payload.Document.OwnerID, topic, env.Payload.Document.ID,
			fmt.Sprintf("Share link %s created for %q", env.Payload.ShareID, env.Payload.Document.FileName))
	}
}
