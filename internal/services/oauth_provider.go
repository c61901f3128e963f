package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/groupledger/backend/internal/config"
	"github.com/groupledger/backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthProviderService runs the Google authorization-code flow. Users created
// through it have no password; their login is the verified Google email.
type OAuthProviderService struct {
	Cfg *config.Config
}

func NewOAuthProviderService(cfg *config.Config) *OAuthProviderService {
	return &OAuthProviderService{Cfg: cfg}
}

// OAuthProfile is the subset of the provider's userinfo the ledger keeps.
type OAuthProfile struct {
	Email     string
	FirstName string
	LastName  string
	AvatarURL *string
}

func (s *OAuthProviderService) GoogleConfig() (*oauth2.Config, error) {
	if !s.Cfg.SSO.Google.Enabled {
		return nil, errors.New("google oauth is not enabled")
	}
	return &oauth2.Config{
		ClientID:     s.Cfg.SSO.Google.ClientID,
		ClientSecret: s.Cfg.SSO.Google.ClientSecret,
		RedirectURL:  s.Cfg.SSO.Google.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

func (s *OAuthProviderService) GenerateState() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(nonce), nil
}

func (s *OAuthProviderService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	oauthCfg, err := s.GoogleConfig()
	if err != nil {
		return nil, err
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		logger.Warn("oauth_exchange_failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, errors.New("failed to exchange code for token")
	}
	return token, nil
}

func (s *OAuthProviderService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthProfile, error) {
	oauthCfg, err := s.GoogleConfig()
	if err != nil {
		return nil, err
	}
	client := oauthCfg.Client(ctx, token)

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google api returned status %d: %s", resp.StatusCode, string(body))
	}

	var data struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Email == "" {
		return nil, errors.New("google profile has no email")
	}

	profile := &OAuthProfile{
		Email:     data.Email,
		FirstName: data.GivenName,
		LastName:  data.FamilyName,
	}
	if data.Picture != "" {
		profile.AvatarURL = &data.Picture
	}
	return profile, nil
}
