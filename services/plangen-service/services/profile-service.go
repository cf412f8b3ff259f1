package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
)

// ProfileProvider supplies body metrics, targets and preferences.
type ProfileProvider interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// ProfileService reads profiles from the users service.
type ProfileService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewProfileService(baseURL, apiKey string) *ProfileService {
	return &ProfileService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	endpoint := fmt.Sprintf("%s/users/%s/profile", ps.baseURL, url.PathEscape(userID))
	if err := getJSON(ctx, ps.client, endpoint, nil, ps.apiKey, &profile); err != nil {
		return nil, fmt.Errorf("failed to get profile for %s: %w", userID, err)
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}
	return &profile, nil
}
