// Package pdf はdocconvを使用したPDFテキスト抽出を提供します。
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"code.sajari.com/docconv"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/usecase"
)

// docconvのConvertPDFが実行時に呼び出すpoppler-utilsのコマンドです。
var requiredBinaries = []string{"pdftotext", "pdfinfo"}

var lookPath = exec.LookPath

// CheckRuntime はPDF抽出に必要なpoppler-utilsのコマンドがPATH上にあるか確認します。
// 見つからない場合、すべてのPDFアップロードは抽出失敗になります。
func CheckRuntime() error {
	for _, bin := range requiredBinaries {
		if _, err := lookPath(bin); err != nil {
			return fmt.Errorf("%s not found in PATH (install poppler-utils): %w", bin, err)
		}
	}
	return nil
}

// DocconvExtractor はpdftotext（docconv経由）でPDFのテキストをページ順に抽出します。
type DocconvExtractor struct {
	convert func(data []byte) (string, error)
}

// DocconvExtractorがTextExtractorを実装していることをコンパイル時に検証します。
var _ usecase.TextExtractor = (*DocconvExtractor)(nil)

// NewDocconvExtractor はDocconvExtractorの新しいインスタンスを生成します。
func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{convert: convertPDF}
}

func convertPDF(data []byte) (string, error) {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	return body, err
}

// Extract はPDFバイト列から全ページのテキストを連結して返します。
// 空の入力はdomain.ErrEmptyInput、変換の失敗はdomain.ErrExtractionFailedを返すため、
// 呼び出し元は「空のPDF」と「抽出失敗」を区別できます。
func (e *DocconvExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := e.convert(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyInput
	}
	return text, nil
}
