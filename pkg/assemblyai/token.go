package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultAPIURL       = "https://streaming.assemblyai.com/v3"
	DefaultTokenExpires = 600 * time.Second
)

var ErrMissingAPIKey = errors.New("ASSEMBLY_API_KEY is not configured")

type Config struct {
	APIKey       string
	APIURL       string
	TokenExpires time.Duration
	HTTPClient   *http.Client
}

func ConfigFromEnv() Config {
	return Config{
		APIKey: os.Getenv("ASSEMBLY_API_KEY"),
		APIURL: os.Getenv("ASSEMBLY_API_URL"),
	}
}

func (c Config) withDefaults() Config {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.TokenExpires <= 0 {
		c.TokenExpires = DefaultTokenExpires
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// TokenClient mints temporary streaming tokens so the API key never leaves the server.
type TokenClient struct {
	cfg Config
}

func NewTokenClient(cfg Config) *TokenClient {
	return &TokenClient{cfg: cfg.withDefaults()}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *TokenClient) Token(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", ErrMissingAPIKey
	}

	u, err := url.Parse(c.cfg.APIURL + "/token")
	if err != nil {
		return "", fmt.Errorf("invalid AssemblyAI API url: %w", err)
	}
	q := u.Query()
	q.Set("expires_in_seconds", strconv.Itoa(int(c.cfg.TokenExpires/time.Second)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("assemblyai token error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if payload.Token == "" {
		return "", errors.New("assemblyai returned an empty token")
	}

	return payload.Token, nil
}
