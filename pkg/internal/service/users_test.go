package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx, dbc := newTestContext(t)
	svc := NewUserService(ctx)

	reg, err := svc.Register(ctx, &types.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, string(model.RoleUser), reg.User.Role)

	login, err := svc.Login(ctx, &types.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)
	_ = dbc
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc := NewUserService(ctx)

	req := &types.RegisterRequest{Email: "dup@example.com", Name: "Dup", Password: "password123"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginRejections(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)
	svc := NewUserService(ctx)

	// 密码错误与账户不存在同样返回 401
	_, err := svc.Login(ctx, &types.LoginRequest{Email: u.Email, Password: "wrong-password"})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	// 封禁账户即使凭证正确也拒绝
	require.NoError(t, dbc.GetDB().Model(u).Update("banned", true).Error)

	_, err = svc.Login(ctx, &types.LoginRequest{Email: u.Email, Password: "password123"})
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestIssueAndParseToken(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleVerifier)
	_ = ctx

	token, exp, err := IssueToken(u)
	require.NoError(t, err)
	require.True(t, exp.After(nowUTC()))

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, u.Email, claims.Email)
	require.Equal(t, string(model.RoleVerifier), claims.Role)
	require.Equal(t, u.PasswordMarker(), claims.Pwd)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)
	_ = ctx

	token, _, err := IssueToken(u)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = ParseToken("not-a-jwt")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestChangePasswordRotatesMarker(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)
	svc := NewUserService(ctx)

	oldToken, _, err := IssueToken(u)
	require.NoError(t, err)

	oldClaims, err := ParseToken(oldToken)
	require.NoError(t, err)
	require.Zero(t, oldClaims.Pwd)

	resp, err := svc.ChangePassword(ctx, u.ID, &types.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "new-password-456",
	})
	require.NoError(t, err)

	// 改密后用户标记刷新，旧令牌内嵌的标记不再匹配
	fresh, err := findUser(dbc, u.ID)
	require.NoError(t, err)
	require.NotZero(t, fresh.PasswordMarker())
	require.NotEqual(t, oldClaims.Pwd, fresh.PasswordMarker())

	// 响应携带新标记的令牌
	newClaims, err := ParseToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, fresh.PasswordMarker(), newClaims.Pwd)

	// 新密码可登录
	_, err = svc.Login(ctx, &types.LoginRequest{Email: u.Email, Password: "new-password-456"})
	require.NoError(t, err)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)

	_, err := NewUserService(ctx).ChangePassword(ctx, u.ID, &types.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "new-password-456",
	})
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestMe(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)

	info, err := NewUserService(ctx).Me(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, info.Email)

	_, err = NewUserService(ctx).Me(ctx, "missing-id")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
