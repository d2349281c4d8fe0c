package ipfs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestResolveRewritesLocatorScheme(t *testing.T) {
	r := NewResolver("https://ipfs.io/ipfs/", testLogger())

	assert.Equal(t, "https://ipfs.io/ipfs/QmHash", r.Resolve("ipfs://QmHash"))
	assert.Equal(t, "https://example.com/meta.json", r.Resolve("https://example.com/meta.json"))
}

func TestFetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/QmHash", req.URL.Path)
		fmt.Fprint(w, `{"name":"Cat","description":"a cat","image":"ipfs://QmImg"}`)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	meta, err := r.FetchMetadata(context.Background(), "ipfs://QmHash")
	require.NoError(t, err)
	assert.Equal(t, "Cat", meta.Name)
	assert.Equal(t, "a cat", meta.Description)
	assert.Equal(t, "ipfs://QmImg", meta.Image)
}

func TestFetchMetadataErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/garbage":
			fmt.Fprint(w, "not json at all")
		}
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())

	_, err := r.FetchMetadata(context.Background(), "ipfs://missing")
	assert.Error(t, err)

	_, err = r.FetchMetadata(context.Background(), "ipfs://garbage")
	assert.Error(t, err)
}

func TestFetchBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/one":
			fmt.Fprint(w, `{"name":"one","description":"d","image":"ipfs://i1"}`)
		case "/three":
			fmt.Fprint(w, `{"name":"three","description":"d","image":"ipfs://i3"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	got := r.FetchBatch(context.Background(), []string{
		"ipfs://one",
		"ipfs://broken",
		"ipfs://three",
		"", // missing locator from a failed on-chain read
	})

	require.Len(t, got, 4)
	require.NotNil(t, got[0])
	assert.Equal(t, "one", got[0].Name)
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, "three", got[2].Name)
	assert.Nil(t, got[3])
}

func TestFetchBatchEmptyInput(t *testing.T) {
	r := NewResolver("https://ipfs.io/ipfs/", testLogger())
	assert.Empty(t, r.FetchBatch(context.Background(), nil))
}
