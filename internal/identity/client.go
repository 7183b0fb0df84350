package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/olyadmengistu/quicktalk/internal/session"
)

// Client talks to the auth service for interactive sign-in and mints
// anonymous identities locally.
type Client struct {
	baseURL string
	tokens  *Tokens
	http    *http.Client
}

func NewClient(baseURL string, tokens *Tokens) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth service: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	uid, err := c.tokens.Parse(lr.Token)
	if err != nil {
		return nil, fmt.Errorf("auth service token: %w", err)
	}
	return &session.Session{UserID: uid, Token: lr.Token}, nil
}

// Anonymous is the fallback identity and is assumed to always succeed short
// of the process being unable to sign a token.
func (c *Client) Anonymous(ctx context.Context) (*session.Session, error) {
	uid := "anon-" + uuid.NewString()
	tok, err := c.tokens.Make(uid)
	if err != nil {
		return nil, err
	}
	return &session.Session{UserID: uid, Token: tok, Anonymous: true}, nil
}
