package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
)

const (
	catalogPageSize = 200
	catalogMaxPages = 50
)

// ErrNotFound is returned by the HTTP providers for a 404 response.
var ErrNotFound = errors.New("resource not found")

// CatalogProvider supplies the raw candidate records.
type CatalogProvider interface {
	ListFoods(ctx context.Context) ([]models.RawFood, error)
	ListExercises(ctx context.Context) ([]models.RawExercise, error)
}

// CatalogService reads foods and exercises from the content service.
type CatalogService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewCatalogService(baseURL, apiKey string) *CatalogService {
	return &CatalogService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListFoods pages through the food listing until a short page comes back.
func (cs *CatalogService) ListFoods(ctx context.Context) ([]models.RawFood, error) {
	var foods []models.RawFood
	for page := 0; page < catalogMaxPages; page++ {
		params := url.Values{}
		params.Add("page_number", strconv.Itoa(page))
		params.Add("max_results", strconv.Itoa(catalogPageSize))

		var result models.FoodAPIResult
		if err := getJSON(ctx, cs.client, cs.baseURL+"/foods", params, cs.apiKey, &result); err != nil {
			return nil, fmt.Errorf("failed to list foods: %w", err)
		}
		foods = append(foods, result.Foods...)
		if len(result.Foods) < catalogPageSize {
			break
		}
	}
	return foods, nil
}

func (cs *CatalogService) ListExercises(ctx context.Context) ([]models.RawExercise, error) {
	var result models.ExerciseAPIResult
	if err := getJSON(ctx, cs.client, cs.baseURL+"/exercises", nil, cs.apiKey, &result); err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return result.Exercises, nil
}

// getJSON issues an authorized GET and decodes the "data" member of the
// {message, data} envelope into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, apiKey string, out any) error {
	reqURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	if len(params) > 0 {
		reqURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}
