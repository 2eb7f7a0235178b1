package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ProviderSession is what the hosted identity provider hands back on a
// successful password sign-in or session introspection.
type ProviderSession struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// IdentityProvider abstracts the hosted auth service (GoTrue-compatible).
// Role does not live here; it comes from the profiles table.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	CurrentSession(ctx context.Context) (*ProviderSession, error)
	SignOut(ctx context.Context) error
}

type gotrueProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// last issued token, used for introspection and sign-out; handlers run
	// concurrently, so access goes through token/setToken
	mu          sync.Mutex
	accessToken string
}

func (p *gotrueProvider) token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken
}

func (p *gotrueProvider) setToken(token string) {
	p.mu.Lock()
	p.accessToken = token
	p.mu.Unlock()
}

func NewGoTrueProvider(baseURL, apiKey string) IdentityProvider {
	return &gotrueProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (p *gotrueProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	url := fmt.Sprintf("%s/auth/v1/token?grant_type=password", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider sign-in failed: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}

	p.setToken(tok.AccessToken)
	return &ProviderSession{
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
		AccessToken: tok.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

func (p *gotrueProvider) CurrentSession(ctx context.Context) (*ProviderSession, error) {
	accessToken := p.token()
	if accessToken == "" {
		return nil, ErrNoSession
	}

	url := fmt.Sprintf("%s/auth/v1/user", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider session check failed: status %d", resp.StatusCode)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	return &ProviderSession{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: accessToken,
	}, nil
}

func (p *gotrueProvider) SignOut(ctx context.Context) error {
	accessToken := p.token()
	if accessToken == "" {
		return nil
	}

	url := fmt.Sprintf("%s/auth/v1/logout", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	p.setToken("")

	if resp.StatusCode >= 400 {
		return fmt.Errorf("identity provider sign-out failed: status %d", resp.StatusCode)
	}
	return nil
}
