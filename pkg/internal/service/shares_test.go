package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/types"
)

func TestNewShareIDFormat(t *testing.T) {
	id := newShareID()
	require.True(t, strings.HasPrefix(id, "sh_"))
	require.Equal(t, strings.ToLower(id), id)
	require.Len(t, id, 3+26)
}

func TestCreateShareExpiryPresets(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)
	require.Nil(t, resp.Share.ExpireAt)

	resp, err = svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "24h"})
	require.NoError(t, err)
	require.NotNil(t, resp.Share.ExpireAt)
	require.WithinDuration(t, nowUTC().Add(24*time.Hour), *resp.Share.ExpireAt, time.Minute)

	_, err = svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "3d"})
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestCreateShareOwnershipRequired(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	stranger := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	_, err := NewShareService(ctx).Create(ctx, stranger, doc.ID,
		&types.CreateShareRequest{ExpiresIn: "never"})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPublicMetaMissingRevokedExpired(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	// 不存在
	_, err := svc.PublicMeta(ctx, "sh_"+uuid.NewString())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// 已撤销：与不存在同形
	revoked, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, owner, revoked.Share.ShareID))

	_, err = svc.PublicMeta(ctx, revoked.Share.ShareID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// 已过期：明确返回 410
	expired, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "1h"})
	require.NoError(t, err)

	past := nowUTC().Add(-time.Minute)
	require.NoError(t, dbc.GetDB().Model(&model.Share{}).
		Where("share_id = ?", expired.Share.ShareID).Update("expire_at", past).Error)

	_, err = svc.PublicMeta(ctx, expired.Share.ShareID)
	require.Equal(t, apperr.KindGone, apperr.KindOf(err))
}

func TestPublicMetaOfDeletedDocument(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)

	require.NoError(t, dbc.GetDB().Delete(&model.Document{}, "id = ?", doc.ID).Error)

	_, err = svc.PublicMeta(ctx, resp.Share.ShareID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPublicViewPasswordFlow(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{
		ExpiresIn: "never",
		Password:  "sesame",
	})
	require.NoError(t, err)
	require.True(t, resp.Share.Protected)

	// 元信息不要求密码
	meta, err := svc.PublicMeta(ctx, resp.Share.ShareID)
	require.NoError(t, err)
	require.True(t, meta.Protected)

	_, err = svc.PublicView(ctx, resp.Share.ShareID, "")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.PublicView(ctx, resp.Share.ShareID, "wrong")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	view, err := svc.PublicView(ctx, resp.Share.ShareID, "sesame")
	require.NoError(t, err)
	require.Equal(t, string(model.StatusVerified), view.VerificationStatus)

	var share model.Share
	require.NoError(t, dbc.GetDB().First(&share, "share_id = ?", resp.Share.ShareID).Error)
	require.Equal(t, 1, share.ViewCount)
}

func TestPublicViewUnprotectedIgnoresPassword(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusAnalyzed)
	withAnalysis(t, dbc, doc, 80)

	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)

	view, err := svc.PublicView(ctx, resp.Share.ShareID, "anything")
	require.NoError(t, err)
	require.NotNil(t, view.Analysis)
	require.Equal(t, float64(80), view.Analysis.AuthenticityScore)
}

func TestRevokeByStrangerLooksLikeMissing(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	stranger := seedUser(t, dbc, model.RoleUser)
	admin := seedUser(t, dbc, model.RoleAdmin)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)

	err = svc.Revoke(ctx, stranger, resp.Share.ShareID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// 管理员可代为撤销
	require.NoError(t, svc.Revoke(ctx, admin, resp.Share.ShareID))
}

func TestListSharesIncludesRevokedAndExpired(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	other := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	otherDoc := seedDocument(t, dbc, other, model.StatusVerified)
	svc := NewShareService(ctx)

	first, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, owner, first.Share.ShareID))

	_, err = svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "1h"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, other, otherDoc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, resp.Shares, 2)
}

func TestNewShareIDConcurrentUnique(t *testing.T) {
	const workers, perWorker = 8, 32

	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < perWorker; j++ {
				ids <- newShareID()
			}
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		require.True(t, strings.HasPrefix(id, "sh_"))

		_, dup := seen[id]
		require.False(t, dup, "duplicate share id %s", id)
		seen[id] = struct{}{}
	}

	require.Len(t, seen, workers*perWorker)
}

func TestRevokeBannedActorDeniedFirst(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	stranger := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewShareService(ctx)

	resp, err := svc.Create(ctx, owner, doc.ID, &types.CreateShareRequest{ExpiresIn: "never"})
	require.NoError(t, err)

	owner.Banned = true
	stranger.Banned = true

	// 封禁判定先于所有权，非所有者也得到 Forbidden 而不是 NotFound
	err = svc.Revoke(ctx, stranger, resp.Share.ShareID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.Revoke(ctx, owner, resp.Share.ShareID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
