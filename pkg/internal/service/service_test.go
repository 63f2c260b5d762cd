package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage"
	"github.com/docshield/docshield/pkg/internal/storage/db"
)

// newTestContext 构建仅含内存数据库的服务上下文。
// 每个测试使用独立命名的共享内存库，互不串库.
func newTestContext(t *testing.T) (context.Context, *db.Client) {
	t.Helper()

	require.NoError(t, configs.InitConfig(t.TempDir()))
	configs.GetConfig().Signing.KeyDir = t.TempDir()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	dbc := &db.Client{DB: gdb}
	ctx := ctxPkg.WithStorageManager(context.Background(), &storage.Manager{DB: dbc})

	return ctx, dbc
}

// seedUser 写入一个指定角色的用户，密码为 "password123".
func seedUser(t *testing.T, dbc *db.Client, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "Test " + string(role),
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, dbc.GetDB().Create(u).Error)

	return u
}

// seedDocument 写入一份属于 owner 的文档，带可分析的文本.
func seedDocument(t *testing.T, dbc *db.Client, owner *model.User, status model.VerificationStatus) *model.Document {
	t.Helper()

	doc := &model.Document{
		ID:                 uuid.NewString(),
		UserID:             owner.ID,
		ObjectKey:          "users/" + owner.ID + "/" + uuid.NewString() + ".pdf",
		FileName:           "contract.pdf",
		Size:               2048,
		ContentType:        "application/pdf",
		Category:           "contracts",
		FileHash:           uuid.NewString(),
		Signature:          "deadbeef",
		ExtractedText:      "This agreement is entered into by the undersigned parties on the date below.",
		VerificationStatus: status,
	}
	require.NoError(t, dbc.GetDB().Create(doc).Error)

	return doc
}

// withAnalysis 为文档预置一份给定分数的分析结果.
func withAnalysis(t *testing.T, dbc *db.Client, doc *model.Document, score float64) {
	t.Helper()

	encoded, err := model.EncodeAnalysis(&model.Analysis{
		AuthenticityScore: score,
		RiskLevel:         model.RiskLow,
		Flags:             []string{},
		Summary:           "seeded analysis",
		Confidence:        0.9,
		AnalyzedAt:        nowUTC(),
	})
	require.NoError(t, err)

	require.NoError(t, dbc.GetDB().Model(doc).Updates(map[string]any{
		"analysis_json":       encoded,
		"verification_status": model.StatusAnalyzed,
	}).Error)

	doc.AnalysisJSON = encoded
	doc.VerificationStatus = model.StatusAnalyzed
}

// reloadDocument 重新加载文档，含软删除记录.
func reloadDocument(t *testing.T, dbc *db.Client, id string) *model.Document {
	t.Helper()

	var doc model.Document
	require.NoError(t, dbc.GetDB().Unscoped().First(&doc, "id = ?", id).Error)

	return &doc
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, -1, 1, DefaultPageSize},
		{2, 10, 2, 10},
		{1, MaxPageSize + 50, 1, MaxPageSize},
	}

	for _, c := range cases {
		page, size := clampPage(c.page, c.size)
		require.Equal(t, c.wantPage, page)
		require.Equal(t, c.wantSize, size)
	}
}

func TestToDocumentInfoBadAnalysisJSON(t *testing.T) {
	doc := &model.Document{
		ID:                 uuid.NewString(),
		FileName:           "x.pdf",
		AnalysisJSON:       "{not json",
		VerificationStatus: model.StatusAnalyzed,
	}

	// 解析失败不阻断响应，analysis 字段为空
	info := toDocumentInfo(doc)
	require.Nil(t, info.Analysis)
	require.Equal(t, string(model.StatusAnalyzed), info.VerificationStatus)
}
