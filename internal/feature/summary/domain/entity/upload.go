package entity

import "time"

// Upload はPDFアップロードから要約取得までの間に保持するデータです。
// Tokenは呼び出し元ごとに発行される不透明な値で、ExpiresAtを過ぎると参照できません。
type Upload struct {
	Token       string    `json:"token"`
	CompanyName string    `json:"company_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired はアップロードの有効期限が切れている場合にtrueを返します。
func (u *Upload) IsExpired() bool {
	return time.Now().After(u.ExpiresAt)
}

// IsComplete は企業名とテキストの両方が揃っている場合にtrueを返します。
func (u *Upload) IsComplete() bool {
	return u.CompanyName != "" && u.Text != ""
}
