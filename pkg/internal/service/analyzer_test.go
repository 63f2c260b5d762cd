package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/model"
)

// heuristicAnalyzer 未配置 API key 的分析器，走本地启发式.
func heuristicAnalyzer() *Analyzer {
	return newAnalyzer(configs.AnalyzerConfig{Enabled: true})
}

func heuristicDoc(text string) *model.Document {
	return &model.Document{
		ID:            uuid.NewString(),
		FileName:      "statement.pdf",
		FileHash:      "abc123",
		ContentType:   "application/pdf",
		ExtractedText: text,
	}
}

func TestAnalyzeRequiresExtractedText(t *testing.T) {
	_, err := heuristicAnalyzer().Analyze(context.Background(), heuristicDoc(""))
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestHeuristicIsDeterministic(t *testing.T) {
	a := heuristicAnalyzer()
	doc := heuristicDoc(strings.Repeat("The quarterly report covers standard operations. ", 4))

	first, err := a.Analyze(context.Background(), doc)
	require.NoError(t, err)
	require.GreaterOrEqual(t, first.AuthenticityScore, float64(0))
	require.LessOrEqual(t, first.AuthenticityScore, float64(100))
	require.NotEmpty(t, string(first.RiskLevel))
	require.NotNil(t, first.Flags)

	// 同一内容哈希与文件名得到相同的分数
	second := a.heuristic(doc)
	require.Equal(t, first.AuthenticityScore, second.AuthenticityScore)
}

func TestHeuristicFlags(t *testing.T) {
	a := heuristicAnalyzer()

	short := a.heuristic(heuristicDoc("tiny"))
	require.Contains(t, short.Flags, "very short text")

	pressured := a.heuristic(heuristicDoc(strings.Repeat("URGENT: wire the funds immediately. ", 4)))
	require.Contains(t, pressured.Flags, "pressure language")

	clean := a.heuristic(heuristicDoc(strings.Repeat("Routine meeting minutes for the committee. ", 4)))
	require.Empty(t, clean.Flags)
}

func TestHeuristicScoreRange(t *testing.T) {
	a := heuristicAnalyzer()

	// 基线 [55,85]，叠加扣分后仍不低于 0
	for range 64 {
		doc := heuristicDoc("tiny urgent")
		doc.FileHash = uuid.NewString()

		res := a.heuristic(doc)
		require.GreaterOrEqual(t, res.AuthenticityScore, float64(0))
		require.LessOrEqual(t, res.AuthenticityScore, float64(85))
	}
}

func TestParseAnalysisJSONStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"authenticity_score\": 82.5, \"risk_level\": \"low\", \"flags\": [], \"summary\": \"ok\", \"confidence\": 0.8}\n```"

	res, err := parseAnalysisJSON(raw)
	require.NoError(t, err)
	require.Equal(t, 82.5, res.AuthenticityScore)
	require.Equal(t, model.RiskLow, res.RiskLevel)
}

func TestParseAnalysisJSONClampsScore(t *testing.T) {
	res, err := parseAnalysisJSON(`{"authenticity_score": 150, "risk_level": "low"}`)
	require.NoError(t, err)
	require.Equal(t, float64(100), res.AuthenticityScore)

	res, err = parseAnalysisJSON(`{"authenticity_score": -20, "risk_level": "high"}`)
	require.NoError(t, err)
	require.Equal(t, float64(0), res.AuthenticityScore)
}

func TestParseAnalysisJSONRejectsGarbage(t *testing.T) {
	_, err := parseAnalysisJSON("the document looks fine to me")
	require.Equal(t, apperr.KindCollaborator, apperr.KindOf(err))
}

func TestAnalyzeFillsDefaults(t *testing.T) {
	a := heuristicAnalyzer()

	res, err := a.Analyze(context.Background(),
		heuristicDoc(strings.Repeat("Plain content without any trigger words. ", 4)))
	require.NoError(t, err)
	require.False(t, res.AnalyzedAt.IsZero())
	require.NotNil(t, res.Flags)
}
