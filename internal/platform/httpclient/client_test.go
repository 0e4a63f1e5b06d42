package httpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/internal/platform/httpclient"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/things", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		assert.Equal(t, "static", r.Header.Get("X-Api-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "v", in["k"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42"}`))
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.Config{
		Name:    "test",
		BaseURL: srv.URL + "/api/",
		Headers: map[string]string{"X-Api-Key": "static"},
	})

	var out struct {
		ID string `json:"id"`
	}
	err := c.DoJSON(context.Background(), http.MethodPost, "things", map[string]string{"k": "v"}, &out, httpclient.WithBearer("tkn"))
	require.NoError(t, err)
	assert.Equal(t, "42", out.ID)
}

func TestDoJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.Config{BaseURL: srv.URL})

	err := c.DoJSON(context.Background(), http.MethodGet, "/missing", nil, nil)
	require.Error(t, err)
	assert.True(t, httpclient.IsStatus(err, http.StatusNotFound))
	assert.False(t, httpclient.IsStatus(err, http.StatusUnauthorized))

	var se *httpclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "nope", se.Body)
}

func TestDoJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})

	err := c.DoJSON(context.Background(), http.MethodGet, "/slow", nil, nil)
	require.Error(t, err)
	assert.False(t, httpclient.IsStatus(err, http.StatusOK))
}

func TestPostForm_AbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Write([]byte(`{"access_token":"abc"}`))
	}))
	defer srv.Close()

	c := httpclient.New(httpclient.Config{BaseURL: "http://unused.invalid"})

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.PostForm(context.Background(), srv.URL+"/token", url.Values{"grant_type": {"client_credentials"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.AccessToken)
}
