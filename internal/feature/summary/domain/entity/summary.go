// Package entity はsummaryフィーチャーのドメインモデルを定義します。
package entity

import "strings"

// Category は要約対象の固定カテゴリを表します。
type Category struct {
	Name string // モデル応答内の見出し（例: "Financial Performance"）
	Key  string // JSONキー（例: "financial_performance"）
}

// Marker は応答内でカテゴリの開始を示す "<Name>:" を返します。
func (c Category) Marker() string {
	return c.Name + ":"
}

func newCategory(name string) Category {
	return Category{
		Name: name,
		Key:  strings.ToLower(strings.ReplaceAll(name, " ", "_")),
	}
}

// Categories はプロンプトで指示する順序どおりのカテゴリ一覧です。
// 応答の解析もこの順序に依存します。
var Categories = []Category{
	newCategory("Financial Performance"),
	newCategory("Market Dynamics"),
	newCategory("Expansion Plans"),
	newCategory("Environmental Risks"),
	newCategory("Regulatory or Policy Changes"),
}

// Summary は1件のトランスクリプトに対する要約結果です。
// 応答から見出しが見つからなかったカテゴリはSectionsに含まれません。
type Summary struct {
	CompanyName string            // 呼び出し元が指定した企業名
	Sections    map[string]string // Category.Key -> 要約本文
}

// Section は指定カテゴリの要約と、検出できたかどうかを返します。
func (s *Summary) Section(c Category) (string, bool) {
	v, ok := s.Sections[c.Key]
	return v, ok
}
