package tournamentanalysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// Errors returned by Analyze. Callers surface them as collaborator failures.
var (
	ErrNoImages      = errors.New("no images to analyze")
	ErrNoJSON        = errors.New("analysis response contained no JSON object")
	ErrNothingUseful = errors.New("analysis found neither a position nor kills")
)

const defaultMaxImageBytes = 8 << 20

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

const scoreboardPrompt = `You are reading Call of Duty Warzone end-of-match screenshots.
Extract:
1. the team's finishing position (1 is the winner)
2. the team's total kills (sum over all players)
3. each player's name and kills

If several images are given, combine what they show.
Answer with JSON only, no prose:
{"position": number or null, "totalKills": number, "players": [{"name": string, "kills": number}], "confidence": "high" | "medium" | "low"}
Use null for anything you cannot read and "low" confidence when unsure.`

// Config configures the Gemini client. Endpoint overrides the API base URL.
type Config struct {
	APIKey            string
	Model             string
	Endpoint          string
	RequestsPerMinute int
	Timeout           time.Duration
	MaxImageBytes     int64
}

const apiVersion = "v1beta"

// Client sends scoreboard screenshots to the Gemini generateContent API.
type Client struct {
	cfg     Config
	http    *http.Client
	genai   *genai.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient returns a client. A nil httpClient uses one with cfg.Timeout; it
// serves both the screenshot downloads and the model calls.
func NewClient(ctx context.Context, cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = defaultMaxImageBytes
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		genai:   gc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// Analyze downloads the screenshots and asks the model for the result.
func (c *Client) Analyze(ctx context.Context, imageURLs []string) (tournamentdomain.AnalyzedResult, error) {
	if len(imageURLs) == 0 {
		return tournamentdomain.AnalyzedResult{}, ErrNoImages
	}

	parts := []*genai.Part{genai.NewPartFromText(scoreboardPrompt)}
	for _, u := range imageURLs {
		img, err := c.fetchImage(ctx, u)
		if err != nil {
			return tournamentdomain.AnalyzedResult{}, err
		}
		parts = append(parts, img)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return tournamentdomain.AnalyzedResult{}, fmt.Errorf("analysis rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return tournamentdomain.AnalyzedResult{}, fmt.Errorf("analysis request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return tournamentdomain.AnalyzedResult{}, fmt.Errorf("analysis response has no candidates")
	}

	result, err := ParseAnalysis(text)
	if err != nil {
		c.logger.WarnContext(ctx, "Unusable analysis response",
			slog.Int("images", len(imageURLs)),
			slog.Any("error", err),
		)
		return tournamentdomain.AnalyzedResult{}, err
	}

	c.logger.InfoContext(ctx, "Scoreboard analyzed",
		slog.Int("images", len(imageURLs)),
		slog.String("confidence", string(result.Confidence)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (c *Client) fetchImage(ctx context.Context, imageURL string) (*genai.Part, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > c.cfg.MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", c.cfg.MaxImageBytes)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return genai.NewPartFromBytes(data, mime), nil
}

// ParseAnalysis pulls the JSON object out of the model's answer. A missing
// position stays nil; missing kills and confidence default to 0 and medium.
func ParseAnalysis(text string) (tournamentdomain.AnalyzedResult, error) {
	raw := jsonObject.FindString(text)
	if raw == "" || !gjson.Valid(raw) {
		return tournamentdomain.AnalyzedResult{}, ErrNoJSON
	}
	doc := gjson.Parse(raw)

	var result tournamentdomain.AnalyzedResult
	if pos := doc.Get("position"); pos.Type == gjson.Number && pos.Int() > 0 {
		p := int(pos.Int())
		result.Position = &p
	}
	result.TotalKills = int(doc.Get("totalKills").Int())
	if result.Position == nil && result.TotalKills == 0 {
		return tournamentdomain.AnalyzedResult{}, ErrNothingUseful
	}

	result.Players = []tournamentdomain.PlayerKills{}
	doc.Get("players").ForEach(func(_, p gjson.Result) bool {
		name := strings.TrimSpace(p.Get("name").String())
		if name != "" {
			result.Players = append(result.Players, tournamentdomain.PlayerKills{Name: name, Kills: int(p.Get("kills").Int())})
		}
		return true
	})
	result.Confidence = tournamentdomain.ParseConfidence(doc.Get("confidence").String())
	return result, nil
}
