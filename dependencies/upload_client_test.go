package dependencies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/myErrors"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

func newTestUploadClient(t *testing.T, endpoint string) UploadClientInterface {
	t.Helper()
	client, err := InitUploadClient(&appConfig.UploadConfig{
		Endpoint:       endpoint,
		TimeoutSeconds: 5,
	}, newTestLogger(t))
	require.NoError(t, err)
	return client
}

func sampleFiles() []UploadFile {
	return []UploadFile{
		{Name: "a.png", ContentType: "image/png", Data: []byte("png-bytes")},
		{Name: "b.jpg", ContentType: "image/jpeg", Data: []byte("jpg-bytes")},
	}
}

func TestUploadClientSuccess(t *testing.T) {
	var gotFileNames []string
	var gotContentTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		for _, header := range r.MultipartForm.File["files"] {
			gotFileNames = append(gotFileNames, header.Filename)
			gotContentTypes = append(gotContentTypes, header.Header.Get("Content-Type"))
		}
		_ = json.NewEncoder(w).Encode(map[string][]string{
			"urls": {"http://cdn/a.png", "http://cdn/b.jpg"},
		})
	}))
	defer server.Close()

	client := newTestUploadClient(t, server.URL)
	urls, err := client.Upload(context.Background(), sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://cdn/a.png", "http://cdn/b.jpg"}, urls)
	assert.Equal(t, []string{"a.png", "b.jpg"}, gotFileNames)
	// 每个 part 携带各自文件的 Content-Type
	assert.Equal(t, []string{"image/png", "image/jpeg"}, gotContentTypes)
}

func TestUploadClientDefaultsMissingContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotContentType = r.MultipartForm.File["files"][0].Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(map[string][]string{"urls": {"http://cdn/raw.bin"}})
	}))
	defer server.Close()

	client := newTestUploadClient(t, server.URL)
	_, err := client.Upload(context.Background(), []UploadFile{{Name: "raw.bin", Data: []byte{0x1}}})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", gotContentType)
}

func TestUploadClientEmptyInputSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestUploadClient(t, server.URL)
	urls, err := client.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.False(t, called)
}

func TestUploadClientGatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestUploadClient(t, server.URL)
	_, err := client.Upload(context.Background(), sampleFiles())
	assert.ErrorIs(t, err, myErrors.ErrFileUploadFailed)
}

func TestUploadClientURLCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"urls": {"http://cdn/only-one"}})
	}))
	defer server.Close()

	client := newTestUploadClient(t, server.URL)
	_, err := client.Upload(context.Background(), sampleFiles())
	assert.ErrorIs(t, err, myErrors.ErrFileUploadFailed)
}

func TestUploadClientUnreachableGateway(t *testing.T) {
	client := newTestUploadClient(t, "http://127.0.0.1:1/upload")
	_, err := client.Upload(context.Background(), sampleFiles())
	assert.ErrorIs(t, err, myErrors.ErrFileUploadFailed)
}
