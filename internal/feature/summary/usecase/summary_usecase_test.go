package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/domain/entity"
	"earnings_summary/internal/feature/summary/usecase"
)

// ErrAPI はモックと期待値の間で共有されるセンチネルエラーです。
var ErrAPI = errors.New("api error")

// mockContentGenerator はContentGeneratorインターフェースのモック実装です。
type mockContentGenerator struct {
	GenerateFunc  func(ctx context.Context, prompt string) (string, error)
	GenerateCalls int
	LastPrompt    string
}

func (m *mockContentGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.GenerateCalls++
	m.LastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", errors.New("GenerateFunc is not implemented")
}

// wordPreprocessor は単語を1トークンとみなすTextPreprocessorのテスト実装です。
type wordPreprocessor struct{}

func (wordPreprocessor) Preprocess(text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return "", domain.ErrInvalidTokenLimit
	}
	words := strings.Fields(strings.ReplaceAll(text, "*", ""))
	if len(words) == 0 {
		return "", domain.ErrEmptyInput
	}
	if len(words) > maxTokens {
		words = words[:maxTokens]
	}
	return strings.Join(words, " "), nil
}

func (wordPreprocessor) Count(text string) int {
	return len(strings.Fields(text))
}

// mockExtractor はTextExtractorインターフェースのモック実装です。
type mockExtractor struct {
	ExtractFunc func(ctx context.Context, data []byte) (string, error)
}

func (m *mockExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, data)
	}
	return "", errors.New("ExtractFunc is not implemented")
}

// mockUploadStore はUploadStoreインターフェースのマップによるモック実装です。
type mockUploadStore struct {
	mu        sync.Mutex
	uploads   map[string]*entity.Upload
	SaveErr   error
	SaveCalls int
}

func newMockUploadStore() *mockUploadStore {
	return &mockUploadStore{uploads: map[string]*entity.Upload{}}
}

func (m *mockUploadStore) Save(ctx context.Context, upload *entity.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.uploads[upload.Token] = upload
	return nil
}

func (m *mockUploadStore) Find(ctx context.Context, token string) (*entity.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[token]
	if !ok {
		return nil, domain.ErrUploadNotFound
	}
	return u, nil
}

func (m *mockUploadStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, token)
	return nil
}

// recordingMetrics は記録されたメトリクスを保持するMetricsRecorderのテスト実装です。
type recordingMetrics struct {
	requests []string
	sections map[string]bool
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{sections: map[string]bool{}}
}

func (r *recordingMetrics) RecordRequest(source, outcome string) {
	r.requests = append(r.requests, source+":"+outcome)
}

func (r *recordingMetrics) RecordDuration(time.Duration) {}

func (r *recordingMetrics) RecordSection(category string, detected bool) {
	r.sections[category] = detected
}

const fullReply = "Financial Performance: Revenue up 12%.\n" +
	"Market Dynamics: Demand is **shifting**.\n" +
	"Expansion Plans: Two new   plants.\n" +
	"Environmental Risks: Drought exposure.\n" +
	"Regulatory or Policy Changes: New tariffs."

// summaryUsecase はテスト対象のメソッド集合です。
type summaryUsecase interface {
	Summarize(ctx context.Context, in usecase.SummaryInput) (*entity.Summary, error)
	CheckTranscriptLength(text string) error
	UploadPDF(ctx context.Context, companyName string, data []byte) (*entity.Upload, error)
	SummarizeUpload(ctx context.Context, token string) (*entity.Summary, error)
}

func newUsecase(gen usecase.ContentGenerator, ext usecase.TextExtractor, store usecase.UploadStore, metrics usecase.MetricsRecorder) summaryUsecase {
	return usecase.NewSummaryUsecase(gen, wordPreprocessor{}, ext, store, usecase.Config{
		UploadTTL: time.Minute,
		Metrics:   metrics,
	})
}

func TestSummaryUsecase_Summarize(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name             string
		input            usecase.SummaryInput
		mockFunc         func(ctx context.Context, prompt string) (string, error)
		expectedSections map[string]string
		expectedErr      error
		expectedCalls    int
		expectedOutcome  string
	}{
		{
			name:  "success: all categories parsed",
			input: usecase.SummaryInput{CompanyName: "Acme", TranscriptText: "We had a great quarter."},
			mockFunc: func(ctx context.Context, prompt string) (string, error) {
				return fullReply, nil
			},
			expectedSections: map[string]string{
				"financial_performance":        "Revenue up 12%.",
				"market_dynamics":              "Demand is shifting.",
				"expansion_plans":              "Two new plants.",
				"environmental_risks":          "Drought exposure.",
				"regulatory_or_policy_changes": "New tariffs.",
			},
			expectedCalls:   1,
			expectedOutcome: "json:success",
		},
		{
			name:  "success: omitted categories are absent",
			input: usecase.SummaryInput{CompanyName: "Acme", TranscriptText: "text", Source: usecase.SourcePDF},
			mockFunc: func(ctx context.Context, prompt string) (string, error) {
				return "Financial Performance: Strong quarter. Market Dynamics: Competitive pressure rising. Expansion Plans: Opening two new plants.", nil
			},
			expectedSections: map[string]string{
				"financial_performance": "Strong quarter.",
				"market_dynamics":       "Competitive pressure rising.",
				"expansion_plans":       "Opening two new plants.",
			},
			expectedCalls:   1,
			expectedOutcome: "pdf:success",
		},
		{
			name:  "success: no markers yields only company name",
			input: usecase.SummaryInput{CompanyName: "Acme", TranscriptText: "text"},
			mockFunc: func(ctx context.Context, prompt string) (string, error) {
				return "I could not find anything relevant.", nil
			},
			expectedSections: map[string]string{},
			expectedCalls:    1,
			expectedOutcome:  "json:success",
		},
		{
			name:  "error: generator fails",
			input: usecase.SummaryInput{CompanyName: "Acme", TranscriptText: "text"},
			mockFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", ErrAPI
			},
			expectedErr:     domain.ErrGenerationFailed,
			expectedCalls:   1,
			expectedOutcome: "json:generation_error",
		},
		{
			name:  "error: generator returns empty text",
			input: usecase.SummaryInput{CompanyName: "Acme", TranscriptText: "text"},
			mockFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", nil
			},
			expectedErr:     domain.ErrGenerationFailed,
			expectedCalls:   1,
			expectedOutcome: "json:generation_error",
		},
		{
			name:            "error: empty company name",
			input:           usecase.SummaryInput{TranscriptText: "text"},
			expectedErr:     domain.ErrMissingData,
			expectedOutcome: "json:rejected",
		},
		{
			name:            "error: transcript empty after cleaning",
			input:           usecase.SummaryInput{CompanyName: "Acme", TranscriptText: " *** \n"},
			expectedErr:     domain.ErrEmptyInput,
			expectedOutcome: "json:rejected",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockContentGenerator{GenerateFunc: tc.mockFunc}
			metrics := newRecordingMetrics()
			uc := newUsecase(gen, &mockExtractor{}, newMockUploadStore(), metrics)

			result, err := uc.Summarize(ctx, tc.input)

			if gen.GenerateCalls != tc.expectedCalls {
				t.Errorf("generator calls: got %d, want %d", gen.GenerateCalls, tc.expectedCalls)
			}
			if len(metrics.requests) != 1 || metrics.requests[0] != tc.expectedOutcome {
				t.Errorf("recorded outcome: got %v, want [%s]", metrics.requests, tc.expectedOutcome)
			}

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				if result != nil {
					t.Errorf("expected nil result on error, got %+v", result)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.CompanyName != tc.input.CompanyName {
				t.Errorf("company name mismatch: got %q, want %q", result.CompanyName, tc.input.CompanyName)
			}
			if len(result.Sections) != len(tc.expectedSections) {
				t.Errorf("section count: got %d (%v), want %d", len(result.Sections), result.Sections, len(tc.expectedSections))
			}
			for key, want := range tc.expectedSections {
				if got, ok := result.Sections[key]; !ok || got != want {
					t.Errorf("section %s: got %q (present=%v), want %q", key, got, ok, want)
				}
			}
		})
	}
}

func TestSummaryUsecase_Summarize_PromptContents(t *testing.T) {
	gen := &mockContentGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return fullReply, nil
	}}
	uc := newUsecase(gen, &mockExtractor{}, newMockUploadStore(), nil)

	_, err := uc.Summarize(context.Background(), usecase.SummaryInput{
		CompanyName:    "Acme",
		TranscriptText: "**Revenue**   grew\n\nstrongly",
		PromptSuffix:   "Answer in one sentence per category",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gen.LastPrompt, "Text:Revenue grew strongly\n\nAnswer in one sentence per category") {
		t.Errorf("prompt does not contain cleaned transcript and suffix: %q", gen.LastPrompt)
	}
}

func TestSummaryUsecase_Summarize_TruncatesTranscriptAndSections(t *testing.T) {
	words := make([]string, usecase.TranscriptMaxTokens+50)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	longSection := strings.Repeat("detail ", usecase.SectionMaxTokens+100)

	gen := &mockContentGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "Financial Performance: " + longSection, nil
	}}
	uc := newUsecase(gen, &mockExtractor{}, newMockUploadStore(), nil)

	result, err := uc.Summarize(context.Background(), usecase.SummaryInput{
		CompanyName:    "Acme",
		TranscriptText: strings.Join(words, " "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := fmt.Sprintf(" w%d\n\n", usecase.TranscriptMaxTokens-1)
	if !strings.Contains(gen.LastPrompt, last) {
		t.Errorf("prompt should keep token %q", last)
	}
	if strings.Contains(gen.LastPrompt, fmt.Sprintf(" w%d", usecase.TranscriptMaxTokens)) {
		t.Errorf("prompt should drop tokens past the ceiling")
	}

	got := len(strings.Fields(result.Sections["financial_performance"]))
	if got != usecase.SectionMaxTokens {
		t.Errorf("section tokens: got %d, want %d", got, usecase.SectionMaxTokens)
	}
}

func TestSummaryUsecase_CheckTranscriptLength(t *testing.T) {
	uc := newUsecase(&mockContentGenerator{}, &mockExtractor{}, newMockUploadStore(), nil)

	atLimit := strings.Repeat("x ", usecase.TranscriptMaxTokens)
	if err := uc.CheckTranscriptLength(atLimit); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}

	overLimit := strings.Repeat("x ", usecase.TranscriptMaxTokens+1)
	if err := uc.CheckTranscriptLength(overLimit); !errors.Is(err, domain.ErrTranscriptTooLong) {
		t.Errorf("expected ErrTranscriptTooLong, got %v", err)
	}
}

func TestSummaryUsecase_UploadPDF(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		companyName string
		extractFunc func(ctx context.Context, data []byte) (string, error)
		saveErr     error
		expectedErr error
		expectSave  bool
	}{
		{
			name:        "success: upload stored with token",
			companyName: "Acme",
			extractFunc: func(ctx context.Context, data []byte) (string, error) {
				return "Page one.\n\fPage   two.", nil
			},
			expectSave: true,
		},
		{
			name:        "error: missing company name",
			companyName: "",
			expectedErr: domain.ErrMissingData,
		},
		{
			name:        "error: extraction failed",
			companyName: "Acme",
			extractFunc: func(ctx context.Context, data []byte) (string, error) {
				return "", fmt.Errorf("%w: corrupt", domain.ErrExtractionFailed)
			},
			expectedErr: domain.ErrExtractionFailed,
		},
		{
			name:        "error: store fails",
			companyName: "Acme",
			extractFunc: func(ctx context.Context, data []byte) (string, error) {
				return "text", nil
			},
			saveErr:     ErrAPI,
			expectedErr: ErrAPI,
			expectSave:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMockUploadStore()
			store.SaveErr = tc.saveErr
			uc := newUsecase(&mockContentGenerator{}, &mockExtractor{ExtractFunc: tc.extractFunc}, store, nil)

			before := time.Now()
			upload, err := uc.UploadPDF(ctx, tc.companyName, []byte("%PDF-1.4"))

			if (store.SaveCalls > 0) != tc.expectSave {
				t.Errorf("save called = %v, want %v", store.SaveCalls > 0, tc.expectSave)
			}

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if upload.Token == "" {
				t.Fatal("expected a token")
			}
			if upload.Text != "Page one. Page two." {
				t.Errorf("stored text: got %q", upload.Text)
			}
			if upload.ExpiresAt.Before(before.Add(time.Minute)) {
				t.Errorf("expiry %v should be at least one minute after %v", upload.ExpiresAt, before)
			}
			if _, err := store.Find(ctx, upload.Token); err != nil {
				t.Errorf("upload not found in store: %v", err)
			}
		})
	}
}

func TestSummaryUsecase_UploadPDF_TokensAreDistinct(t *testing.T) {
	store := newMockUploadStore()
	ext := &mockExtractor{ExtractFunc: func(ctx context.Context, data []byte) (string, error) {
		return string(data), nil
	}}
	uc := newUsecase(&mockContentGenerator{}, ext, store, nil)

	a, err := uc.UploadPDF(context.Background(), "Acme", []byte("first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := uc.UploadPDF(context.Background(), "Globex", []byte("second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Token == b.Token {
		t.Fatalf("concurrent callers must not share a token: %q", a.Token)
	}
	gotA, _ := store.Find(context.Background(), a.Token)
	if gotA.CompanyName != "Acme" || gotA.Text != "first" {
		t.Errorf("first upload overwritten: %+v", gotA)
	}
}

func TestSummaryUsecase_SummarizeUpload(t *testing.T) {
	ctx := context.Background()

	store := newMockUploadStore()
	_ = store.Save(ctx, &entity.Upload{Token: "ok", CompanyName: "Acme", Text: "transcript", ExpiresAt: time.Now().Add(time.Minute)})
	_ = store.Save(ctx, &entity.Upload{Token: "no-text", CompanyName: "Acme", ExpiresAt: time.Now().Add(time.Minute)})

	testCases := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{name: "success: stored upload summarized", token: "ok"},
		{name: "error: empty token", token: "", expectedErr: domain.ErrMissingData},
		{name: "error: unknown token", token: "missing", expectedErr: domain.ErrMissingData},
		{name: "error: incomplete upload", token: "no-text", expectedErr: domain.ErrMissingData},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockContentGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return fullReply, nil
			}}
			uc := newUsecase(gen, &mockExtractor{}, store, nil)

			result, err := uc.SummarizeUpload(ctx, tc.token)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				if gen.GenerateCalls != 0 {
					t.Errorf("generator should not be called, got %d calls", gen.GenerateCalls)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.CompanyName != "Acme" {
				t.Errorf("company name mismatch: got %q", result.CompanyName)
			}
			if len(result.Sections) != len(entity.Categories) {
				t.Errorf("expected %d sections, got %d", len(entity.Categories), len(result.Sections))
			}
		})
	}
}

// blockingLimiter は常にエラーを返すRateLimiterのテスト実装です。
type blockingLimiter struct{ err error }

func (l blockingLimiter) Wait(ctx context.Context) error { return l.err }

func TestSummaryUsecase_Summarize_RateLimited(t *testing.T) {
	gen := &mockContentGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return fullReply, nil
	}}
	metrics := newRecordingMetrics()
	uc := usecase.NewSummaryUsecase(gen, wordPreprocessor{}, &mockExtractor{}, newMockUploadStore(), usecase.Config{
		Metrics: metrics,
		Limiter: blockingLimiter{err: context.DeadlineExceeded},
	})

	summary, err := uc.Summarize(context.Background(), usecase.SummaryInput{
		CompanyName:    "Acme",
		TranscriptText: "We grew.",
	})
	if summary != nil {
		t.Errorf("expected nil summary, got %+v", summary)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("rate limit wait should not be reported as a generation failure")
	}
	if gen.GenerateCalls != 0 {
		t.Errorf("expected no model call, got %d", gen.GenerateCalls)
	}
	if len(metrics.requests) != 1 || metrics.requests[0] != "json:error" {
		t.Errorf("unexpected recorded requests: %v", metrics.requests)
	}
}
