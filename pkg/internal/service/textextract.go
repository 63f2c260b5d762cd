package service

import (
	"bytes"
	"strings"
	"unicode/utf8"

	pdfreader "github.com/ledongthuc/pdf"

	nlog "github.com/docshield/docshield/pkg/log"
)

// ExtractText 从上传内容中提取纯文本，供真实性分析使用。
// 纯文本直接透传，PDF 逐页抽取，其余类型（图片、DOCX）返回空串，
// 空文本的文档无法走自动分析，只能进入人工审核.
func ExtractText(data []byte, contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "text/"):
		if utf8.Valid(data) {
			return string(data)
		}

		return ""
	case contentType == "application/pdf":
		return extractPDFText(data)
	default:
		return ""
	}
}

func extractPDFText(data []byte) string {
	defer func() {
		// 损坏的 PDF 可能触发库内 panic，提取失败按空文本处理
		if r := recover(); r != nil {
			nlog.Logger().Warn().Any("panic", r).Msg("pdf text extraction panicked")
		}
	}()

	reader, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		nlog.Logger().Debug().Err(err).Msg("pdf open failed, skipping text extraction")

		return ""
	}

	var sb strings.Builder

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}
