package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrProfileIncomplete = errors.New("oauth profile incomplete")

// Profile es la identidad mínima que se obtiene del proveedor.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
}

// Provider es la estrategia OAuth que usan los handlers.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Profile, error)
}

// GoogleProvider implementa Provider con golang.org/x/oauth2 y el endpoint
// userinfo de Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	if strings.TrimSpace(code) == "" {
		return Profile{}, fmt.Errorf("exchange: empty code")
	}
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Profile{}, fmt.Errorf("userinfo http error: status=%d", resp.StatusCode)
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return Profile{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return Profile{}, ErrProfileIncomplete
	}
	return Profile{ID: info.ID, DisplayName: info.Name, Email: info.Email}, nil
}

type userInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
