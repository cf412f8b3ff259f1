package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": data}))
}

func TestCatalogServiceListFoodsPages(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		page := r.URL.Query().Get("page_number")
		pages = append(pages, page)

		count := catalogPageSize
		if page == "1" {
			count = 3
		}
		foods := make([]models.RawFood, count)
		for i := range foods {
			foods[i] = rawFood(fmt.Sprintf("%s-%d", page, i), "Food "+strconv.Itoa(i), "grains", 100, 1, 20, 1)
		}
		writeEnvelope(t, w, models.FoodAPIResult{Foods: foods})
	}))
	defer server.Close()

	cs := NewCatalogService(server.URL+"/", "secret")
	foods, err := cs.ListFoods(context.Background())
	require.NoError(t, err)

	assert.Len(t, foods, catalogPageSize+3)
	assert.Equal(t, []string{"0", "1"}, pages)
	assert.Equal(t, "100", foods[0].Servings[0].Calories)
}

func TestCatalogServiceListExercises(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exercises", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"message":"ok","data":{"total_results":"1","exercises":[{"id":"squat","name":"Squat","muscle_groups":["quads"],"safety_rating":0.9}]}}`))
	}))
	defer server.Close()

	exercises, err := NewCatalogService(server.URL, "").ListExercises(context.Background())
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Equal(t, "squat", exercises[0].ID)
	require.NotNil(t, exercises[0].SafetyRating)
	assert.Equal(t, 0.9, *exercises[0].SafetyRating)
	assert.Nil(t, exercises[0].EffectivenessRating)
}

func TestCatalogServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exercises":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer server.Close()

	cs := NewCatalogService(server.URL, "")

	_, err := cs.ListExercises(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cs.ListFoods(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestProfileServiceGetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/user-1/profile" {
			http.NotFound(w, r)
			return
		}
		writeEnvelope(t, w, models.UserProfile{TDEE: 2500, Goal: models.GoalGainMass})
	}))
	defer server.Close()

	ps := NewProfileService(server.URL, "key")

	profile, err := ps.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 2500.0, profile.TDEE)
	assert.Equal(t, models.GoalGainMass, profile.Goal)

	_, err = ps.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
