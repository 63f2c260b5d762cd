package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
)

func testDoc(ownerID string) *model.Document {
	return &model.Document{ID: uuid.NewString(), UserID: ownerID}
}

func TestGateDocumentOwner(t *testing.T) {
	owner := &model.User{ID: uuid.NewString(), Role: model.RoleUser}
	doc := testDoc(owner.ID)

	require.NoError(t, gateDocument(owner, doc, ActionView))
	require.NoError(t, gateDocument(owner, doc, ActionMutate))

	// 属主身份不授予审核与管理权限
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(gateDocument(owner, doc, ActionReview)))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(gateDocument(owner, doc, ActionAdmin)))
}

func TestGateDocumentBannedBeatsOwnership(t *testing.T) {
	owner := &model.User{ID: uuid.NewString(), Role: model.RoleAdmin, Banned: true}

	err := gateDocument(owner, testDoc(owner.ID), ActionView)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestGateDocumentStrangerGetsNotFound(t *testing.T) {
	stranger := &model.User{ID: uuid.NewString(), Role: model.RoleUser}

	// 所有权保护的拒绝返回 404，不泄露文档存在性
	err := gateDocument(stranger, testDoc(uuid.NewString()), ActionView)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = gateDocument(stranger, testDoc(uuid.NewString()), ActionMutate)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGateDocumentVerifier(t *testing.T) {
	verifier := &model.User{ID: uuid.NewString(), Role: model.RoleVerifier}
	doc := testDoc(uuid.NewString())

	require.NoError(t, gateDocument(verifier, doc, ActionView))
	require.NoError(t, gateDocument(verifier, doc, ActionReview))

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(gateDocument(verifier, doc, ActionMutate)))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(gateDocument(verifier, doc, ActionAdmin)))
}

func TestGateDocumentAdminBypassesOwnership(t *testing.T) {
	admin := &model.User{ID: uuid.NewString(), Role: model.RoleAdmin}
	doc := testDoc(uuid.NewString())

	for _, action := range []Action{ActionView, ActionMutate, ActionReview, ActionAdmin} {
		require.NoError(t, gateDocument(admin, doc, action))
	}
}

func TestGateDocumentNilActor(t *testing.T) {
	err := gateDocument(nil, testDoc(uuid.NewString()), ActionView)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRequireRole(t *testing.T) {
	verifier := &model.User{ID: uuid.NewString(), Role: model.RoleVerifier}

	require.NoError(t, requireRole(verifier, model.RoleVerifier, model.RoleAdmin))
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(requireRole(verifier, model.RoleAdmin)))
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(requireRole(nil, model.RoleAdmin)))

	banned := &model.User{ID: uuid.NewString(), Role: model.RoleAdmin, Banned: true}
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(requireRole(banned, model.RoleAdmin)))
}
