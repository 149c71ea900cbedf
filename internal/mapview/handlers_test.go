package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-bandoxanh/internal/poi"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	lists poi.Lists
	err   error
}

func (s staticSource) All(context.Context) (poi.Lists, error) {
	return s.lists, s.err
}

func TestMapHandler(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), staticSource{lists: sampleLists()})

	req := httptest.NewRequest(http.MethodGet, "/api/map?category=stations&radius=5&lat=21.0227&lng=105.8521", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(2), body.Items[0].ID)
	assert.Equal(t, poi.KindStation, body.Items[0].Kind)
	require.NotNil(t, body.Items[0].DistanceKm)
	require.NotNil(t, body.Bounds)
}

func TestMapHandlerWithoutLocation(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), staticSource{lists: sampleLists()})

	req := httptest.NewRequest(http.MethodGet, "/api/map?q=tr%E1%BA%A1m", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 2)
	assert.Nil(t, body.Items[0].DistanceKm)
}

func TestMapHandlerBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), staticSource{})

	for _, target := range []string{
		"/api/map?radius=0",
		"/api/map?radius=abc",
		"/api/map?category=parks",
		"/api/map?lat=x&lng=1",
		"/api/map?focus=park-1",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestMapHandlerSourceError(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), staticSource{err: errors.New("db down")})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/map", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMapHandlerMarkers(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), staticSource{lists: sampleLists()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/map?category=stations&focus=station-2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Markers, 2)
	assert.Equal(t, poi.Key{Kind: poi.KindStation, ID: 1}, body.Markers[0].Key)
	assert.Equal(t, "recycle", body.Markers[0].Icon)
	assert.Equal(t, MarkerStyle{Scale: 1, ZIndex: 0}, body.Markers[0].Style)
	assert.Equal(t, poi.Key{Kind: poi.KindStation, ID: 2}, body.Markers[1].Key)
	assert.Equal(t, MarkerStyle{Scale: 1.4, ZIndex: 1000}, body.Markers[1].Style)
}
