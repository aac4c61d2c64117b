package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemID = "3b6b5c6d1f1a4e2b8c3d5e6f7a8b9c0d"

func newTestClient(url string) *Client {
	return NewClient(Options{URL: url, MaxRetries: 3, InitialInterval: time.Millisecond})
}

func TestDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sharing/rest/content/items/"+itemID, r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("f"))
		w.Write([]byte(`{"id":"` + itemID + `","title":"San Diego","snippet":"Mobile map package","type":"Mobile Map Package"}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL + "/").Describe(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, "San Diego", item.Title)
	assert.Equal(t, "Mobile map package", item.Snippet)
	assert.Equal(t, "Mobile Map Package", item.Type)
}

func TestDescribeRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"x","title":"Recovered"}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL).Describe(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", item.Title)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDescribeGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Describe(context.Background(), itemID)
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestDescribePermanentFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"not found status", http.StatusNotFound, "", true},
		{"forbidden", http.StatusForbidden, "", false},
		{"portal error payload", http.StatusOK, `{"error":{"code":400,"message":"Item does not exist or is inaccessible.","details":[]}}`, true},
		{"malformed body", http.StatusOK, `{not json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Describe(context.Background(), itemID)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrItemNotFound))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestDescribeItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"` + itemID + `","title":"Title","snippet":"Snippet"}`))
	}))
	defer srv.Close()

	item, err := newTestClient(srv.URL).DescribeItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, "Title", item.Title)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultURL, c.baseURL)
	assert.Equal(t, 10*time.Second, c.http.Timeout)
	assert.Equal(t, uint64(3), c.maxRetries)
}
