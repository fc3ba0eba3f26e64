// Package tokenizer はGPT-2互換のBPEでテキストをトークン上限内に切り詰めます。
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"earnings_summary/internal/feature/summary/domain"
)

const (
	// Encoding はGPT-2と同じ語彙を持つtiktokenのエンコーディング名です。
	Encoding = "r50k_base"
	// DefaultMaxTokens はトランスクリプト本文のトークン上限です。
	DefaultMaxTokens = 20000
	// SectionMaxTokens はカテゴリごとの要約本文のトークン上限です。
	SectionMaxTokens = 256
)

// BPETruncator はtiktokenのエンコーダを使ってテキストを前処理します。
type BPETruncator struct {
	enc *tiktoken.Tiktoken
}

// NewBPETruncator は埋め込みのBPEファイルからエンコーダを読み込みます。
// 起動時にネットワークへアクセスしません。
func NewBPETruncator() (*BPETruncator, error) {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", Encoding, err)
	}
	return &BPETruncator{enc: enc}, nil
}

// Clean はアスタリスクを取り除き、連続する空白を1つのスペースにまとめて前後を削ります。
func Clean(text string) string {
	text = strings.ReplaceAll(text, "*", "")
	return strings.Join(strings.Fields(text), " ")
}

// Count はテキストをそのままエンコードしたときのトークン数を返します。
func (t *BPETruncator) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Preprocess はCleanを適用した後、先頭maxTokensトークンだけを残してデコードします。
// 切り詰めは単語境界を考慮しないため、末尾に不完全なトークンが残ることがあります。
func (t *BPETruncator) Preprocess(text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return "", domain.ErrInvalidTokenLimit
	}

	cleaned := Clean(text)
	if cleaned == "" {
		return "", domain.ErrEmptyInput
	}

	tokens := t.enc.Encode(cleaned, nil, nil)
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return t.enc.Decode(tokens), nil
}
