// Package handler はsummaryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/domain/entity"
	"earnings_summary/internal/feature/summary/transport/http/dto"
	"earnings_summary/internal/feature/summary/usecase"
)

// クライアントに返すエラーメッセージです。
const (
	MsgNoFilePart        = "No file part in the request"
	MsgNoSelectedFile    = "No selected file"
	MsgInvalidFileFormat = "Invalid file format. Only PDF files are allowed."
	MsgFileTooLarge      = "File too large."
	MsgExtractionFailed  = "Could not extract text from the PDF file."
	MsgMissingData       = "Missing required data"
	MsgJSONExpected      = "Invalid input format. JSON expected."
	MsgInvalidCompany    = "Missing or invalid 'company_name' field."
	MsgInvalidTranscript = "Missing or invalid 'transcript_text' field."
	MsgInvalidSuffix     = "Invalid 'prompt_suffix' field."
	MsgGenerationFailed  = "Failed to generate summary."
	MsgInternalError     = "Internal server error."
)

// DefaultMaxUploadBytes はPDFアップロードの既定の最大サイズ（32MB）です。
const DefaultMaxUploadBytes = 32 << 20

// multipartOverhead はファイル以外のフィールドとパートヘッダーに許容するバイト数です。
const multipartOverhead = 1 << 20

// SummaryUsecase は要約のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SummaryUsecase interface {
	Summarize(ctx context.Context, in usecase.SummaryInput) (*entity.Summary, error)
	CheckTranscriptLength(text string) error
	UploadPDF(ctx context.Context, companyName string, data []byte) (*entity.Upload, error)
	SummarizeUpload(ctx context.Context, token string) (*entity.Summary, error)
}

// SummaryHandler はトランスクリプト要約のHTTPリクエストを処理します。
type SummaryHandler struct {
	uc             SummaryUsecase
	maxUploadBytes int64
}

// NewSummaryHandler はSummaryHandlerの新しいインスタンスを生成します。
// maxUploadBytesが0以下の場合はDefaultMaxUploadBytesを使用します。
func NewSummaryHandler(uc SummaryUsecase, maxUploadBytes int64) *SummaryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &SummaryHandler{uc: uc, maxUploadBytes: maxUploadBytes}
}

// UploadPDF はPDFと企業名を受け取り、テキストを抽出して要約ページへリダイレクトします。
// 抽出結果は呼び出し元ごとのトークンで保存され、リダイレクト先のクエリに含まれます。
//
// エンドポイント: POST /upload-pdf
// Content-Type: multipart/form-data
// フィールド: textInput（企業名）, file（.pdfファイル）
func (h *SummaryHandler) UploadPDF(c *gin.Context) {
	// 上限を超える本文はmultipartの解析中に打ち切る
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("アップロードが上限サイズを超過", "limit", tooLarge.Limit, "remote_addr", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: MsgFileTooLarge})
			return
		}
		slog.Warn("PDFファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgNoFilePart})
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgNoSelectedFile})
		return
	}
	if !strings.HasSuffix(file.Filename, ".pdf") {
		slog.Warn("PDF以外のファイル形式", "filename", file.Filename, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidFileFormat})
		return
	}
	if file.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: MsgFileTooLarge})
		return
	}

	companyName := strings.TrimSpace(c.PostForm("textInput"))
	if companyName == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgMissingData})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("PDFファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternalError})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("PDFファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil {
		slog.Error("PDFデータの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternalError})
		return
	}

	upload, err := h.uc.UploadPDF(c.Request.Context(), companyName, data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExtractionFailed), errors.Is(err, domain.ErrEmptyInput):
			slog.Warn("PDFテキストの抽出に失敗", "error", err, "company", companyName)
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgExtractionFailed})
		case errors.Is(err, domain.ErrMissingData):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgMissingData})
		default:
			slog.Error("アップロードの保存に失敗", "error", err, "company", companyName)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternalError})
		}
		return
	}

	c.Redirect(http.StatusSeeOther, "/summary?token="+url.QueryEscape(upload.Token))
}

// Summary はUploadPDFで保存したデータを要約してJSONで返します。
//
// エンドポイント: GET /summary?token=...
func (h *SummaryHandler) Summary(c *gin.Context) {
	summary, err := h.uc.SummarizeUpload(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.writeSummaryError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}

// EarningsTranscriptSummary はJSONで送信されたトランスクリプトを要約します。
// トークン数が上限を超える場合はモデルを呼び出す前に400を返します。
//
// エンドポイント: POST /earnings_transcript_summary
// Content-Type: application/json
func (h *SummaryHandler) EarningsTranscriptSummary(c *gin.Context) {
	if !isJSON(c.GetHeader("Content-Type")) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgJSONExpected})
		return
	}

	var req dto.TranscriptSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("JSONの解析に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgJSONExpected})
		return
	}

	companyName, ok := req.CompanyName.(string)
	if !ok || companyName == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidCompany})
		return
	}
	transcript, ok := req.TranscriptText.(string)
	if !ok || transcript == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidTranscript})
		return
	}
	var suffix string
	if req.PromptSuffix != nil {
		if suffix, ok = req.PromptSuffix.(string); !ok {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgInvalidSuffix})
			return
		}
	}

	if err := h.uc.CheckTranscriptLength(transcript); err != nil {
		slog.Warn("トランスクリプトがトークン上限を超過", "error", err, "company", companyName)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: transcriptTooLongMessage()})
		return
	}

	summary, err := h.uc.Summarize(c.Request.Context(), usecase.SummaryInput{
		CompanyName:    companyName,
		TranscriptText: transcript,
		PromptSuffix:   suffix,
		Source:         usecase.SourceJSON,
	})
	if err != nil {
		h.writeSummaryError(c, err, MsgInvalidTranscript)
		return
	}
	c.JSON(http.StatusOK, dto.NewSummaryResponse(summary))
}

// writeSummaryError はユースケースのエラーをHTTPステータスに変換します。
// emptyInputMsgが空の場合、ErrEmptyInputはErrMissingDataと同じ扱いになります。
func (h *SummaryHandler) writeSummaryError(c *gin.Context, err error, emptyInputMsg string) {
	switch {
	case errors.Is(err, domain.ErrMissingData):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MsgMissingData})
	case errors.Is(err, domain.ErrEmptyInput):
		if emptyInputMsg == "" {
			emptyInputMsg = MsgMissingData
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: emptyInputMsg})
	case errors.Is(err, domain.ErrGenerationFailed):
		slog.Error("要約の生成に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgGenerationFailed})
	default:
		slog.Error("要約処理で予期しないエラー", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternalError})
	}
}

// Recovery はpanicを500のJSONエラーに変換し、スタックトレースをログに残します。
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: MsgInternalError})
	})
}

func transcriptTooLongMessage() string {
	return fmt.Sprintf("'transcript_text' exceeds the maximum allowed length of %d tokens.", usecase.TranscriptMaxTokens)
}

// isJSON はContent-Typeがapplication/jsonまたはapplication/*+jsonかどうかを返します。
func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}
