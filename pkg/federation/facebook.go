package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quatton/fina/pkg/db/models"
	"golang.org/x/oauth2"
)

const facebookGraphVersion = "v11.0"

// FacebookEndpoint is the Graph API OAuth endpoint.
var FacebookEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.facebook.com/" + facebookGraphVersion + "/dialog/oauth",
	TokenURL: "https://graph.facebook.com/" + facebookGraphVersion + "/oauth/access_token",
}

// FacebookProfileURL returns the fields Facebook identities are built from.
const FacebookProfileURL = "https://graph.facebook.com/" + facebookGraphVersion + "/me?fields=id,name,email"

// FacebookScopes are requested on the consent dialog.
var FacebookScopes = []string{"email", "public_profile"}

type facebookProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Facebook identifies users through the Graph /me endpoint.
type Facebook struct {
	cfg        ClientConfig
	oauth      *oauth2.Config
	profileURL string
	client     *http.Client
}

type FacebookOption func(*Facebook)

func WithFacebookEndpoint(ep oauth2.Endpoint, profileURL string) FacebookOption {
	return func(f *Facebook) {
		f.oauth.Endpoint = ep
		f.profileURL = profileURL
	}
}

func WithFacebookHTTPClient(client *http.Client) FacebookOption {
	return func(f *Facebook) { f.client = client }
}

func NewFacebook(cfg ClientConfig, opts ...FacebookOption) *Facebook {
	f := &Facebook{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     FacebookEndpoint,
			Scopes:       FacebookScopes,
		},
		profileURL: FacebookProfileURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = newHTTPClient(f.client)
	return f
}

func (f *Facebook) Name() models.Provider { return models.ProviderFacebook }

func (f *Facebook) AuthCodeURL(state string) string {
	return f.oauth.AuthCodeURL(state)
}

func (f *Facebook) Identify(ctx context.Context, code string) (*Identity, error) {
	if !f.cfg.configured() {
		return nil, ErrNotConfigured
	}

	ctx = withClient(ctx, f.client)
	tok, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, exchangeError(err)
	}

	profile, err := f.fetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile has no id", ErrInvalidIdentity)
	}
	if profile.Email == "" {
		return nil, ErrMissingEmail
	}

	return &Identity{
		Provider:    models.ProviderFacebook,
		Subject:     profile.ID,
		Email:       profile.Email,
		DisplayName: profile.Name,
	}, nil
}

func (f *Facebook) fetchProfile(ctx context.Context, tok *oauth2.Token) (*facebookProfile, error) {
	client := f.oauth.Client(ctx, tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: graph api returned status %d", ErrInvalidIdentity, resp.StatusCode)
	}

	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return &profile, nil
}
