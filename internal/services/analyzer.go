package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/config"
	"barrierfree-backend/internal/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const (
	maxAnalyzedImage  = 5 << 20
	analysisFallback  = "이미지 분석에 실패했습니다. 사용자가 선택한 카테고리로 분류되었습니다."
	defaultSeverity   = "medium"
	imageMaxTokens    = 1024
	classifyMaxTokens = 256
)

var categoryDescriptions = map[string]string{
	"blocked_sidewalk":       "인도가 불법 주차나 적치물로 막혀있음",
	"no_ramp":                "경사로가 없음",
	"damaged_ramp":           "경사로가 파손되었거나 상태가 불량함",
	"damaged_tactile_paving": "점자블록이 파손되었거나 없음",
	"restroom_issue":         "장애인 화장실 고장, 부족, 청결 문제",
	"high_threshold":         "문턱이 높아 휠체어나 유모차 진입이 어려움",
	"elevator_issue":         "엘리베이터 고장 또는 없음",
	"signage_issue":          "안내 표지판이 부족하거나 불명확함",
	"kiosk_accessibility":    "키오스크 높이나 인터페이스 접근성 문제",
	"good_ramp":              "경사로가 잘 설치되어 있음",
	"clean_restroom":         "장애인 화장실이 깨끗하고 잘 작동함",
	"friendly_staff":         "직원이 친절하고 도움을 줌",
	"good_voice_guide":       "음성 안내가 우수함",
	"wide_passage":           "통로가 넓고 이동하기 편함",
}

// AnalyzeImageInput is the payload for an image analysis
type AnalyzeImageInput struct {
	ImageURL     string `json:"image_url" validate:"required,url"`
	ReportType   string `json:"report_type" validate:"required,oneof=barrier praise"`
	UserCategory string `json:"user_category"`
}

// ClassifyTextInput is the payload for a text classification
type ClassifyTextInput struct {
	Description string `json:"description" validate:"required,max=2000"`
	ReportType  string `json:"report_type" validate:"required,oneof=barrier praise"`
}

// TextClassification is the category suggested for a description
type TextClassification struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback,omitempty"`
}

// AnalysisResult wraps an analysis and whether it came from the fallback path
type AnalysisResult struct {
	Analysis *models.AIAnalysis `json:"analysis"`
	Fallback bool               `json:"fallback,omitempty"`
}

// Analyzer classifies report photos and descriptions with the Anthropic
// Messages API. Every failure degrades to a default result.
type Analyzer struct {
	client     anthropic.Client
	configured bool
	model      string

	// images on trusted hosts are fetched directly, everything else goes
	// through a dialer that refuses non-public addresses
	trustedHosts map[string]bool
	trusted      *http.Client
	public       *http.Client
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	a := &Analyzer{
		client:       anthropic.NewClient(opts...),
		configured:   cfg.APIKey != "",
		model:        cfg.Model,
		trustedHosts: make(map[string]bool, len(cfg.AllowedImageHosts)),
	}
	for _, h := range cfg.AllowedImageHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			a.trustedHosts[h] = true
		}
	}

	a.trusted = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !a.trustedHosts[strings.ToLower(req.URL.Host)] {
				return fmt.Errorf("redirect to untrusted host %q", req.URL.Host)
			}
			if len(via) >= 5 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: refuseInternalDial}
	a.public = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	return a
}

// Configured reports whether an API key is present
func (a *Analyzer) Configured() bool {
	return a.configured
}

// AnalyzeImage classifies an image. It never fails on provider errors; the
// fallback keeps the user's category.
func (a *Analyzer) AnalyzeImage(ctx context.Context, in AnalyzeImageInput) (*AnalysisResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	analysis, err := a.analyzeImage(ctx, in)
	if err != nil {
		log.Warn().Err(err).Str("image_url", in.ImageURL).Msg("Image analysis failed, using fallback")
		return &AnalysisResult{Analysis: fallbackAnalysis(in.ReportType, in.UserCategory), Fallback: true}, nil
	}

	return &AnalysisResult{Analysis: analysis}, nil
}

func fallbackAnalysis(reportType, userCategory string) *models.AIAnalysis {
	analysis := &models.AIAnalysis{
		DetectedCategory: userCategory,
		Description:      analysisFallback,
		Tags:             []string{},
	}
	if reportType == models.ReportTypeBarrier {
		analysis.Severity = defaultSeverity
	}
	return analysis
}

func (a *Analyzer) analyzeImage(ctx context.Context, in AnalyzeImageInput) (*models.AIAnalysis, error) {
	if !a.Configured() {
		return nil, fmt.Errorf("analyzer API key is not configured")
	}

	data, mediaType, err := a.fetchImage(ctx, in.ImageURL)
	if err != nil {
		return nil, err
	}

	text, err := a.complete(ctx, imageMaxTokens,
		anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(data)),
		anthropic.NewTextBlock(imagePrompt(in.ReportType, in.UserCategory)),
	)
	if err != nil {
		return nil, err
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	if !models.ValidCategory(in.ReportType, analysis.DetectedCategory) {
		analysis.DetectedCategory = in.UserCategory
	}
	if in.ReportType != models.ReportTypeBarrier {
		analysis.Severity = ""
	} else if analysis.Severity != "low" && analysis.Severity != "medium" && analysis.Severity != "high" {
		analysis.Severity = defaultSeverity
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}

	return &analysis, nil
}

// ClassifyText suggests a category for a description, "other" when the
// provider is unavailable
func (a *Analyzer) ClassifyText(ctx context.Context, in ClassifyTextInput) (*TextClassification, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	result, err := a.classifyText(ctx, in)
	if err != nil {
		log.Warn().Err(err).Msg("Text classification failed, using fallback")
		return &TextClassification{Category: "other", Tags: []string{}, Fallback: true}, nil
	}

	return result, nil
}

func (a *Analyzer) classifyText(ctx context.Context, in ClassifyTextInput) (*TextClassification, error) {
	if !a.Configured() {
		return nil, fmt.Errorf("analyzer API key is not configured")
	}

	text, err := a.complete(ctx, classifyMaxTokens,
		anthropic.NewTextBlock(classifyPrompt(in.ReportType, in.Description)),
	)
	if err != nil {
		return nil, err
	}

	var result TextClassification
	if err := json.Unmarshal([]byte(extractJSON(text)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}
	if !models.ValidCategory(in.ReportType, result.Category) {
		result.Category = "other"
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}

	return &result, nil
}

// complete sends one user turn and returns the first text block of the reply
func (a *Analyzer) complete(ctx context.Context, maxTokens int64, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("analyzer returned status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("failed to call analyzer: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("analyzer response has no text content")
}

func (a *Analyzer) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, "", apperrors.Invalid("invalid image url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", apperrors.Invalid("image url must use http or https")
	}

	client := a.public
	if a.trustedHosts[strings.ToLower(u.Host)] {
		client = a.trusted
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAnalyzedImage+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxAnalyzedImage {
		return nil, "", apperrors.Invalid("image is too large to analyze")
	}

	return data, imageMediaType(imageURL, data), nil
}

// refuseInternalDial runs after DNS resolution, so redirects and rebinding
// cannot reach loopback or private ranges
func refuseInternalDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("failed to parse dial address: %w", err)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("failed to parse dial address: %w", err)
	}
	if !publicAddress(ip) {
		return fmt.Errorf("refusing to fetch image from non-public address %s", ip)
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func publicAddress(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// imageMediaType sniffs the bytes and falls back to the URL extension
func imageMediaType(imageURL string, data []byte) string {
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(imageURL), ".")) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// extractJSON trims prose or code fences around the first JSON object
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

func categoryList(reportType string) string {
	var b strings.Builder
	for _, c := range models.CategoriesFor(reportType) {
		desc := categoryDescriptions[c]
		if desc == "" {
			if reportType == models.ReportTypePraise {
				desc = "기타 우수한 접근성"
			} else {
				desc = "기타 접근성 장벽"
			}
		}
		fmt.Fprintf(&b, "- %s: %s\n", c, desc)
	}
	return b.String()
}

func imagePrompt(reportType, userCategory string) string {
	kind := "접근성 장벽"
	if reportType == models.ReportTypePraise {
		kind = "접근성 우수 사례"
	}

	var b strings.Builder
	b.WriteString("당신은 접근성 전문가입니다. 제공된 이미지를 분석하여 다음 정보를 JSON 형식으로 제공해주세요.\n\n")
	fmt.Fprintf(&b, "이미지 유형: %s\n", kind)
	if userCategory != "" {
		fmt.Fprintf(&b, "사용자 선택 카테고리: %s\n", userCategory)
	}
	b.WriteString("\n가능한 카테고리:\n")
	b.WriteString(categoryList(reportType))
	b.WriteString(`
다음 JSON 형식으로 응답해주세요:
{
  "detected_category": "카테고리 값 (위 목록 중 하나)",
  "severity": "low | medium | high (장벽인 경우만)",
  "description": "발견된 접근성 문제 또는 우수 사례에 대한 1-2문장 설명",
  "tags": ["관련", "태그"]
}

detected_category는 반드시 위 목록의 값 중 하나여야 합니다. description은 한국어로 작성하세요. JSON만 출력하세요.
`)
	return b.String()
}

func classifyPrompt(reportType, description string) string {
	var b strings.Builder
	b.WriteString("다음 설명을 읽고 가장 적합한 카테고리를 선택해주세요.\n\n")
	fmt.Fprintf(&b, "설명: %q\n\n가능한 카테고리:\n", description)
	b.WriteString(categoryList(reportType))
	b.WriteString("\nJSON 형식으로만 응답해주세요: {\"category\": \"카테고리 값\", \"tags\": [\"관련\", \"태그\"]}\n")
	return b.String()
}
