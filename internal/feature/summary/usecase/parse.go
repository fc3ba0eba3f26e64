package usecase

import (
	"strings"

	"earnings_summary/internal/feature/summary/domain/entity"
)

// ParseSections はモデル応答を固定順のカテゴリごとに切り出します。
//
// カテゴリiの本文は最初の "<Name>:" の直後から始まり、次のカテゴリの見出しの位置で終わります。
// 次の見出しはカテゴリiの開始位置から検索します。次の見出しが無い場合と最後のカテゴリは応答末尾までです。
// 見出しが見つからないカテゴリは結果に含まれません。
func ParseSections(reply string) map[string]string {
	out := make(map[string]string, len(entity.Categories))

	for i, c := range entity.Categories {
		start := strings.Index(reply, c.Marker())
		if start == -1 {
			continue
		}

		end := len(reply)
		if i < len(entity.Categories)-1 {
			if j := strings.Index(reply[start:], entity.Categories[i+1].Marker()); j != -1 {
				end = start + j
			}
		}

		bodyStart := start + len(c.Marker())
		if end < bodyStart {
			end = bodyStart
		}
		out[c.Key] = strings.TrimSpace(reply[bodyStart:end])
	}

	return out
}
