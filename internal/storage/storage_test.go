package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func newFakeBucket(t *testing.T) (*fakeBucket, *httptest.Server) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string]string{}, types: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		bucket.mu.Lock()
		bucket.objects[r.URL.Path] = string(body)
		bucket.types[r.URL.Path] = r.Header.Get("Content-Type")
		bucket.mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return bucket, server
}

func testStorage(t *testing.T, endpoint string) *Storage {
	t.Helper()
	s, err := New(context.Background(), Options{
		Bucket:    "resumes",
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		URLTTL:    10 * time.Minute,
	})
	require.NoError(t, err)
	return s
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Region: "us-east-1"})
	require.Error(t, err)
}

func TestPut_UploadsAndPresigns(t *testing.T) {
	bucket, server := newFakeBucket(t)
	s := testStorage(t, server.URL)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	stored, err := s.Put(context.Background(), "exports/2025/03/01/a.txt", "text/plain; charset=utf-8", []byte("Jane Doe"))
	require.NoError(t, err)

	bucket.mu.Lock()
	assert.Equal(t, "Jane Doe", bucket.objects["/resumes/exports/2025/03/01/a.txt"])
	assert.Equal(t, "text/plain; charset=utf-8", bucket.types["/resumes/exports/2025/03/01/a.txt"])
	bucket.mu.Unlock()

	assert.Equal(t, "exports/2025/03/01/a.txt", stored.Key)
	assert.True(t, strings.HasPrefix(stored.URL, server.URL+"/resumes/exports/2025/03/01/a.txt?"))
	assert.Contains(t, stored.URL, "X-Amz-Signature=")
	assert.Contains(t, stored.URL, "X-Amz-Expires=600")
	assert.Equal(t, fixed.Add(10*time.Minute), stored.ExpiresAt)
}

func TestPut_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := testStorage(t, server.URL)
	_, err := s.Put(context.Background(), "k.txt", "text/plain", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload k.txt")
}

func TestNewKey(t *testing.T) {
	now := time.Date(2025, 7, 4, 23, 0, 0, 0, time.FixedZone("x", -5*3600))
	key := NewKey(now, ".docx")
	assert.True(t, strings.HasPrefix(key, "exports/2025/07/05/"), key)
	assert.True(t, strings.HasSuffix(key, ".docx"))
	assert.NotEqual(t, key, NewKey(now, "docx"))
}
