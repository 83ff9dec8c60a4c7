package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf2docx/internal/config"
	"pdf2docx/internal/domain"
	"pdf2docx/internal/infra/cache"
	"pdf2docx/internal/testutil"
)

func minimalConfig() config.Config {
	cfg := config.Default()
	cfg.Limits.MaxRequestBytes = 1024 * 1024
	cfg.Limits.MaxPDFBytes = 512 * 1024
	cfg.Convert.PoolSize = 2
	cfg.Convert.TimeoutSecs = 10
	return cfg
}

func convertRequest(t *testing.T, pdf []byte) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"pdf": base64.StdEncoding.EncodeToString(pdf)})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, ConvertPath, bytes.NewReader(body))
}

func decode(t *testing.T, r io.Reader) domain.Envelope {
	t.Helper()
	var env domain.Envelope
	require.NoError(t, json.NewDecoder(r).Decode(&env))
	return env
}

func TestNew_RoutesAndJSON404(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	respStats, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/converter/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, respStats.StatusCode)

	resp404, err := app.Test(httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp404.StatusCode)
	assert.Contains(t, resp404.Header.Get("Content-Type"), "application/json")
	assert.Equal(t, "*", resp404.Header.Get("Access-Control-Allow-Origin"))
	env := decode(t, resp404.Body)
	assert.False(t, env.Success)
	assert.Equal(t, "Not Found", env.Error)
}

func TestConvert_EndToEnd(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	resp, err := app.Test(convertRequest(t, testutil.MinimalPDF([]string{"Quarterly report", "Revenue grew"})), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	env := decode(t, resp.Body)
	require.True(t, env.Success)
	docx, err := base64.StdEncoding.DecodeString(env.DOCX)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(docx, []byte("PK")))
	assert.True(t, bytes.Contains(docx, []byte("[Content_Types].xml")))
}

func TestConvert_NonPDFBytes(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	resp, err := app.Test(convertRequest(t, []byte("GIF89a definitely not a pdf")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	env := decode(t, resp.Body)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestConvert_MissingPDFIsJSON400(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	req := httptest.NewRequest(http.MethodPost, ConvertPath, bytes.NewReader([]byte(`{"pdf":""}`)))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	env := decode(t, resp.Body)
	assert.False(t, env.Success)
	assert.Equal(t, "no PDF data provided", env.Error)
}

func TestConvert_DecodedSizeCap(t *testing.T) {
	cfg := minimalConfig()
	cfg.Limits.MaxPDFBytes = 16
	app := New(Deps{Config: cfg})

	resp, err := app.Test(convertRequest(t, bytes.Repeat([]byte("x"), 64)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.False(t, decode(t, resp.Body).Success)
}

func TestPreflight_AnyPath(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	for _, path := range []string{ConvertPath, "/", "/nope"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
		body, _ := io.ReadAll(resp.Body)
		assert.Empty(t, body)
	}
}

func TestConvert_UsesRedisCacheWhenEnabled(t *testing.T) {
	mrs, err := miniredis.Run()
	require.NoError(t, err)
	defer mrs.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mrs.Addr()})
	defer func() { _ = rdb.Close() }()

	cfg := minimalConfig()
	cfg.Cache.DocxCacheEnabled = true
	cfg.Cache.DocxCacheTTL = time.Minute
	app := New(Deps{Config: cfg, Redis: rdb})

	pdf := testutil.MinimalPDF([]string{"cache me"})
	resp, err := app.Test(convertRequest(t, pdf), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, mrs.Exists(cache.Key(pdf)))
}

func TestConvert_DamagedPDFsAnswer500AndFreeSlots(t *testing.T) {
	cfg := minimalConfig()
	app := New(Deps{Config: cfg})
	src := testutil.MinimalPDF([]string{"Quarterly report", "Revenue grew"})

	for _, d := range testutil.DamagedPDFs(src) {
		resp, err := app.Test(convertRequest(t, d.Data), -1)
		require.NoError(t, err, d.Name)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), d.Name)

		env := decode(t, resp.Body)
		switch resp.StatusCode {
		case http.StatusOK:
			assert.False(t, d.Hopeless, d.Name)
			assert.True(t, env.Success, d.Name)
		case http.StatusInternalServerError:
			assert.False(t, env.Success, d.Name)
			assert.Equal(t, "PDF conversion failed", env.Error, d.Name)
		default:
			t.Fatalf("%s: unexpected status %d", d.Name, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/converter/stats", nil))
	require.NoError(t, err)
	var stats struct {
		Capacity int `json:"capacity"`
		Idle     int `json:"idle"`
		InUse    int `json:"in_use"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, cfg.Convert.PoolSize, stats.Capacity)
	assert.Equal(t, stats.Capacity, stats.Idle)
	assert.Zero(t, stats.InUse)

	resp, err = app.Test(convertRequest(t, src), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
