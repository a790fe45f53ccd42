package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/model"
)

func TestParseSites(t *testing.T) {
	sites, err := parseSites([]string{"A=https://a.example.com,acme/a", "B=https://b.example.com"})
	require.NoError(t, err)
	assert.Equal(t, []model.Site{
		{SiteName: "A", SiteURL: "https://a.example.com", GitHubRepo: "acme/a"},
		{SiteName: "B", SiteURL: "https://b.example.com"},
	}, sites)

	_, err = parseSites([]string{"https://a.example.com"})
	assert.Error(t, err)
}

func TestCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/fleet/plugins":
			assert.Equal(t, "Bearer t0ken", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"code":200,"msg":"Request Success","detail":{"akismet":{"plugin_slug":"akismet"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":4043,"errMsg":"dispatch ticket not found","path":"/x"}`)
		}
	}))
	defer srv.Close()

	server, token = srv.URL, "t0ken"

	var out bytes.Buffer
	require.NoError(t, call(&out, "GET", "/fleet/plugins", nil))
	assert.Contains(t, out.String(), `"plugin_slug": "akismet"`)

	err := call(&out, "GET", "/fleet/runs/nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 4043")
}
