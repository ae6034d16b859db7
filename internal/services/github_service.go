package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// ErrOAuthDisabled is returned when no GitHub credentials are configured
var ErrOAuthDisabled = errors.New("GitHub sign-in is not configured")

type GitHubService struct {
	oauthConfig *oauth2.Config
	enabled     bool
	// newClient builds the API client for a token; tests swap it out
	newClient func(ctx context.Context, token *oauth2.Token) *github.Client
}

func NewGitHubService(cfg config.GitHubConfig) *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes: []string{
			"read:user",  // Read access to user profile data
			"user:email", // Access to user's email addresses
		},
		Endpoint: githuboauth.Endpoint,
	}

	s := &GitHubService{
		oauthConfig: oauthConfig,
		enabled:     cfg.Enabled(),
	}
	s.newClient = func(ctx context.Context, token *oauth2.Token) *github.Client {
		return github.NewClient(s.oauthConfig.Client(ctx, token))
	}
	return s
}

// Enabled reports whether sign-in can be offered
func (s *GitHubService) Enabled() bool {
	return s.enabled
}

// NewState returns a random value for the OAuth state parameter
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GetAuthURL returns the GitHub OAuth authorization URL
func (s *GitHubService) GetAuthURL(state string) (string, error) {
	if !s.enabled {
		return "", ErrOAuthDisabled
	}
	return s.oauthConfig.AuthCodeURL(state), nil
}

// ExchangeCodeForToken exchanges authorization code for access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	if !s.enabled {
		return nil, ErrOAuthDisabled
	}
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves the signed-in identity from GitHub. When the profile
// email is private, the primary verified address is used instead.
func (s *GitHubService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	client := s.newClient(ctx, token)

	ghUser, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	user := &models.User{
		ID:             strconv.FormatInt(ghUser.GetID(), 10),
		Name:           ghUser.GetName(),
		Username:       ghUser.GetLogin(),
		Email:          ghUser.GetEmail(),
		ProfilePicture: ghUser.GetAvatarURL(),
	}

	if user.Email == "" {
		emails, _, err := client.Users.ListEmails(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list user emails: %w", err)
		}
		for _, e := range emails {
			if e.GetPrimary() && e.GetVerified() {
				user.Email = e.GetEmail()
				break
			}
		}
	}

	return user, nil
}
