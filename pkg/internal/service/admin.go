package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/s3"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
)

// AdminService 管理台：全局统计与用户管理.
type AdminService struct {
	dbc *db.Client
	s3c *s3.Client
}

// NewAdminService 创建 AdminService 实例.
func NewAdminService(c context.Context) *AdminService {
	svc := &AdminService{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, AdminService features limited")
	}

	return svc
}

// Stats 全局统计.
func (s *AdminService) Stats(ctx context.Context, actor *model.User) (*types.AdminStatsResponse, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	gdb := s.dbc.GetDB().WithContext(ctx)
	resp := &types.AdminStatsResponse{StatusCounts: map[string]int64{}}

	if err := gdb.Model(&model.User{}).Count(&resp.Users).Error; err != nil {
		return nil, err
	}

	if err := gdb.Model(&model.Document{}).Count(&resp.Documents).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status model.VerificationStatus `gorm:"column:verification_status"`
		Count  int64
	}

	var rows []statusCount

	err := gdb.Model(&model.Document{}).
		Select("verification_status, COUNT(*) AS count").
		Group("verification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		resp.StatusCounts[string(r.Status)] = r.Count

		switch r.Status {
		case model.StatusVerified:
			resp.Verified = r.Count
		case model.StatusRejected:
			resp.Rejected = r.Count
		case model.StatusPendingReview, model.StatusPending, model.StatusFlagged:
			resp.PendingReviews += r.Count
		}
	}

	if err := gdb.Model(&model.Certificate{}).Count(&resp.Certificates).Error; err != nil {
		return nil, err
	}

	if err := gdb.Model(&model.Share{}).Count(&resp.Shares).Error; err != nil {
		return nil, err
	}

	var totalSize struct{ Total int64 }

	err = gdb.Model(&model.Document{}).
		Select("COALESCE(SUM(size), 0) AS total").
		Scan(&totalSize).Error
	if err != nil {
		return nil, err
	}

	resp.StorageBytes = totalSize.Total

	return resp, nil
}

// ListUsers 用户列表，支持按角色过滤与邮箱/名字模糊查找.
func (s *AdminService) ListUsers(ctx context.Context, actor *model.User,
	req *types.ListUsersRequest,
) (*types.ListUsersResponse, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	page, size := clampPage(req.Page, req.PageSize)

	filtered := func() *gorm.DB {
		tx := s.dbc.GetDB().WithContext(ctx).Model(&model.User{})

		if req.Role != "" {
			tx = tx.Where("role = ?", req.Role)
		}

		if req.Search != "" {
			like := "%" + req.Search + "%"
			tx = tx.Where("email LIKE ? OR name LIKE ?", like, like)
		}

		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	var users []model.User

	err := filtered().Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ListUsersResponse{
		Users:    make([]types.AdminUserInfo, 0, len(users)),
		Total:    total,
		Page:     page,
		PageSize: size,
	}

	for i := range users {
		info := types.AdminUserInfo{UserInfo: toUserInfo(&users[i])}

		if err := s.dbc.GetDB().WithContext(ctx).Model(&model.Document{}).
			Where("user_id = ?", users[i].ID).Count(&info.DocumentCount).Error; err != nil {
			return nil, err
		}

		resp.Users = append(resp.Users, info)
	}

	return resp, nil
}

// CreateUser 管理员直接创建账户，可指定角色.
func (s *AdminService) CreateUser(ctx context.Context, actor *model.User,
	req *types.RegisterRequest, role string,
) (*types.UserInfo, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	if role == "" {
		role = string(model.RoleUser)
	}

	if !model.ValidRole(role) {
		return nil, apperr.Clientf("invalid role %q", role)
	}

	var existing model.User

	err := s.dbc.GetDB().WithContext(ctx).First(&existing, "email = ?", req.Email).Error

	switch {
	case err == nil:
		return nil, apperr.Conflict("email already registered", "")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), configs.GetConfig().Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         model.Role(role),
	}

	if err := s.dbc.GetDB().WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	nlog.Logger().Info().Str("user", u.ID).Str("role", role).
		Str("by", actor.ID).Msg("user created by admin")

	info := toUserInfo(&u)

	return &info, nil
}

// UpdateRole 变更用户角色，角色名必须是三个规范值之一.
func (s *AdminService) UpdateRole(ctx context.Context, actor *model.User, userID string,
	req *types.UpdateRoleRequest,
) (*types.UserInfo, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	if !model.ValidRole(req.Role) {
		return nil, apperr.Clientf("invalid role %q", req.Role)
	}

	u, err := findUser(s.dbc, userID)
	if err != nil {
		return nil, err
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(u).Update("role", req.Role).Error; err != nil {
		return nil, err
	}

	u.Role = model.Role(req.Role)

	nlog.Logger().Info().Str("user", u.ID).Str("role", req.Role).
		Str("by", actor.ID).Msg("role updated")

	info := toUserInfo(u)

	return &info, nil
}

// SetBan 封禁或解封。封禁立即生效，该用户的所有在途令牌都会被拒绝.
func (s *AdminService) SetBan(ctx context.Context, actor *model.User, userID string, banned bool) (*types.UserInfo, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	if actor.ID == userID {
		return nil, apperr.Client("cannot ban yourself")
	}

	u, err := findUser(s.dbc, userID)
	if err != nil {
		return nil, err
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(u).Update("banned", banned).Error; err != nil {
		return nil, err
	}

	u.Banned = banned

	nlog.Logger().Info().Str("user", u.ID).Bool("banned", banned).
		Str("by", actor.ID).Msg("ban state changed")

	info := toUserInfo(u)

	return &info, nil
}

// ResetPassword 管理员重置用户密码，同时刷新改密标记使既有令牌失效.
func (s *AdminService) ResetPassword(ctx context.Context, actor *model.User, userID string,
	req *types.ResetPasswordRequest,
) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}

	u, err := findUser(s.dbc, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), configs.GetConfig().Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := nowUTC()

	err = s.dbc.GetDB().WithContext(ctx).Model(u).Updates(map[string]any{
		"password_hash":       string(hash),
		"password_changed_at": now,
	}).Error
	if err != nil {
		return err
	}

	nlog.Logger().Info().Str("user", u.ID).Str("by", actor.ID).Msg("password reset by admin")

	return nil
}

// DeleteUser 级联删除用户：文档记录与对象、分享、证书、通知、偏好，最后删除账户。
// 数据库侧在单个事务内完成，对象删除在事务外逐个尝试，失败交给孤儿清理任务.
func (s *AdminService) DeleteUser(ctx context.Context, actor *model.User, userID string) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}

	if actor.ID == userID {
		return apperr.Client("cannot delete yourself")
	}

	u, err := findUser(s.dbc, userID)
	if err != nil {
		return err
	}

	var objectKeys []string

	err = s.dbc.GetDB().WithContext(ctx).Model(&model.Document{}).Unscoped().
		Where("user_id = ?", u.ID).
		Pluck("object_key", &objectKeys).Error
	if err != nil {
		return err
	}

	var certKeys []string

	err = s.dbc.GetDB().WithContext(ctx).Model(&model.Certificate{}).
		Where("owner_id = ?", u.ID).
		Pluck("object_key", &certKeys).Error
	if err != nil {
		return err
	}

	err = s.dbc.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var docIDs []string
		if err := tx.Model(&model.Document{}).Unscoped().
			Where("user_id = ?", u.ID).Pluck("id", &docIDs).Error; err != nil {
			return err
		}

		if len(docIDs) > 0 {
			if err := tx.Where("document_id IN ?", docIDs).
				Delete(&model.ReviewEntry{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("owner = ?", u.ID).Delete(&model.Share{}).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", u.ID).Delete(&model.Certificate{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&model.NotificationPreferences{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", u.ID).Delete(&model.Document{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(u).Error
	})
	if err != nil {
		return fmt.Errorf("cascade delete user: %w", err)
	}

	for _, key := range append(objectKeys, certKeys...) {
		if key == "" || s.s3c == nil {
			continue
		}

		if err := s.s3c.Remove(ctx, key); err != nil {
			nlog.Logger().Warn().Err(err).Str("key", key).Msg("object removal failed during cascade")
		}
	}

	nlog.Logger().Info().Str("user", u.ID).Str("by", actor.ID).
		Int("objects", len(objectKeys)+len(certKeys)).Msg("user cascade deleted")

	return nil
}
