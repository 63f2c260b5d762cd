package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
)

// UserService 负责注册、登录与账户自助操作.
type UserService struct {
	dbc *db.Client
}

// NewUserService 创建 UserService 实例.
func NewUserService(c context.Context) *UserService {
	svc := &UserService{dbc: ctxPkg.GetDBClient(c)}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, UserService features limited")
	}

	return svc
}

// AccessClaims JWT 负载。Pwd 内嵌签发时点的改密标记，
// 与用户当前标记不一致的令牌直接拒绝，实现改密即全端下线.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Pwd   int64  `json:"pwd"`
	jwt.RegisteredClaims
}

// IssueToken 为用户签发访问令牌.
func IssueToken(u *model.User) (string, time.Time, error) {
	cfg := configs.GetConfig().Auth
	now := nowUTC()
	exp := now.Add(cfg.GetAccessTTL())

	claims := AccessClaims{
		Email: u.Email,
		Role:  string(u.Role),
		Pwd:   u.PasswordMarker(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, exp, nil
}

// ParseToken 解析并校验访问令牌，只接受 HMAC 签名.
func ParseToken(tokenString string) (*AccessClaims, error) {
	cfg := configs.GetConfig().Auth

	claims := &AccessClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}

	return claims, nil
}

// Register 注册新用户，邮箱全库唯一且大小写敏感.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	gdb := s.dbc.GetDB()

	var existing model.User
	err := gdb.WithContext(ctx).First(&existing, "email = ?", req.Email).Error

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
		Role:         model.RoleUser,
	}

	if err := gdb.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	nlog.Logger().Info().Str("user", u.ID).Str("email", u.Email).Msg("user registered")

	return s.authResponse(&u)
}

// Login 登录。封禁账户即使凭证正确也拒绝.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	var u model.User
	if err := s.dbc.GetDB().WithContext(ctx).First(&u, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}

		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if u.Banned {
		return nil, apperr.Forbidden("account banned")
	}

	return s.authResponse(&u)
}

// Me 返回当前用户信息.
func (s *UserService) Me(ctx context.Context, userID string) (*types.UserInfo, error) {
	u, err := findUser(s.dbc, userID)
	if err != nil {
		return nil, err
	}

	info := toUserInfo(u)

	return &info, nil
}

// ChangePassword 修改密码并更新改密标记，既有令牌全部失效.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req *types.ChangePasswordRequest) (*types.AuthResponse, error) {
	u, err := findUser(s.dbc, userID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
		return nil, apperr.Unauthorized("old password incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), configs.GetConfig().Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := nowUTC()
	u.PasswordHash = string(hash)
	u.PasswordChangedAt = &now

	if err := s.dbc.GetDB().WithContext(ctx).Model(u).Updates(map[string]any{
		"password_hash":       u.PasswordHash,
		"password_changed_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	nlog.Logger().Info().Str("user", u.ID).Msg("password changed, existing tokens invalidated")

	// 返回携带新标记的令牌，调用方无需重新登录
	return s.authResponse(u)
}

func (s *UserService) authResponse(u *model.User) (*types.AuthResponse, error) {
	token, exp, err := IssueToken(u)
	if err != nil {
		return nil, err
	}

	return &types.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      toUserInfo(u),
	}, nil
}
