package racegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Config controls one simulated race run against a live service.
type Config struct {
	BaseURL   string
	Players   int
	Seed      int64
	NoiseRate float64
	Viewport  int
	Timeout   time.Duration
	TopN      int
	Verbose   bool
	Submitter string
}

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

type sessionResponse struct {
	ID string `json:"id"`
}

type raceResultResponse struct {
	RaceID   string   `json:"race_id"`
	Warnings []string `json:"warnings"`
	Deltas   []struct {
		Name  string `json:"name"`
		Delta int    `json:"delta"`
	} `json:"deltas"`
}

type leaderboardRow struct {
	Name            string `json:"name"`
	CumulativeScore int    `json:"cumulative_score"`
	RaceCount       int    `json:"race_count"`
}

// Run generates one synthetic race and drives it through the service:
// open a session, submit each screenshot, finalize, then fetch the
// leaderboard and print the outcome. Screenshots are submitted
// sequentially because results processing is strictly ordered.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Players < 2 {
		return fmt.Errorf("need at least 2 players, got %d", cfg.Players)
	}
	gen := NewGenerator(
		WithSeed(cfg.Seed),
		WithNoiseRate(cfg.NoiseRate),
		WithViewport(cfg.Viewport),
	)
	players := gen.Players(cfg.Players)
	shots := gen.Screenshots(players)
	log.Printf("generated race: %s", Summary(players, shots))

	client := newHTTPClient(cfg.Timeout)

	sessionID, err := startRace(ctx, client, cfg)
	if err != nil {
		return fmt.Errorf("start race: %w", err)
	}
	log.Printf("session opened: %s", sessionID)

	for i, lines := range shots {
		if err := submitScreenshot(ctx, client, cfg, sessionID, lines); err != nil {
			return fmt.Errorf("screenshot %d: %w", i, err)
		}
		if cfg.Verbose {
			log.Printf("screenshot %d submitted (%d lines)", i, len(lines))
		}
	}

	result, err := finalize(ctx, client, cfg, sessionID)
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	log.Printf("race %s finalized: %d deltas, %d warnings",
		result.RaceID, len(result.Deltas), len(result.Warnings))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}

	rows, err := fetchLeaderboard(ctx, client, cfg)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	for i, row := range rows {
		log.Printf("%3d. %-24s %6d (%d races)", i+1, row.Name, row.CumulativeScore, row.RaceCount)
	}
	return nil
}

func startRace(ctx context.Context, client *HTTPClient, cfg *Config) (string, error) {
	resp, err := client.Post(ctx, cfg.BaseURL+"/races", map[string]string{"submitter": cfg.Submitter})
	if err != nil {
		return "", err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}
	return sess.ID, nil
}

func submitScreenshot(ctx context.Context, client *HTTPClient, cfg *Config, sessionID string, lines []string) error {
	url := fmt.Sprintf("%s/races/%s/screenshots", cfg.BaseURL, sessionID)
	resp, err := client.Post(ctx, url, map[string][]string{"lines": lines})
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func finalize(ctx context.Context, client *HTTPClient, cfg *Config, sessionID string) (*raceResultResponse, error) {
	url := fmt.Sprintf("%s/races/%s/finalize", cfg.BaseURL, sessionID)
	resp, err := client.Post(ctx, url, struct{}{})
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var result raceResultResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse race result: %w", err)
	}
	return &result, nil
}

func fetchLeaderboard(ctx context.Context, client *HTTPClient, cfg *Config) ([]leaderboardRow, error) {
	url := fmt.Sprintf("%s/leaderboard?limit=%d", cfg.BaseURL, cfg.TopN)
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var rows []leaderboardRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard: %w", err)
	}
	return rows, nil
}
