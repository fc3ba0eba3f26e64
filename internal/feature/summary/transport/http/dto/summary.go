// Package dto はsummaryフィーチャーのHTTPリクエスト/レスポンス型を定義します。
package dto

import "earnings_summary/internal/feature/summary/domain/entity"

// TranscriptSummaryRequest は POST /earnings_transcript_summary のリクエストボディです。
// 型の誤りを個別のエラーメッセージで返すため、各フィールドはanyで受け取ります。
type TranscriptSummaryRequest struct {
	CompanyName    any `json:"company_name"`
	TranscriptText any `json:"transcript_text"`
	PromptSuffix   any `json:"prompt_suffix,omitempty"`
}

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// SummaryResponse は要約結果のレスポンスです。
// 応答から検出できなかったカテゴリのキーは出力されません。
type SummaryResponse struct {
	CompanyName               string  `json:"company_name"`
	FinancialPerformance      *string `json:"financial_performance,omitempty"`
	MarketDynamics            *string `json:"market_dynamics,omitempty"`
	ExpansionPlans            *string `json:"expansion_plans,omitempty"`
	EnvironmentalRisks        *string `json:"environmental_risks,omitempty"`
	RegulatoryOrPolicyChanges *string `json:"regulatory_or_policy_changes,omitempty"`
}

// NewSummaryResponse はentity.SummaryからSummaryResponseを生成します。
func NewSummaryResponse(s *entity.Summary) SummaryResponse {
	section := func(i int) *string {
		if v, ok := s.Section(entity.Categories[i]); ok {
			return &v
		}
		return nil
	}
	return SummaryResponse{
		CompanyName:               s.CompanyName,
		FinancialPerformance:      section(0),
		MarketDynamics:            section(1),
		ExpansionPlans:            section(2),
		EnvironmentalRisks:        section(3),
		RegulatoryOrPolicyChanges: section(4),
	}
}
