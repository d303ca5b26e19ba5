package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// Well-known development storage account key.
const devAccountKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

type storedAzureBlob struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// fakeBlobService is a minimal in-memory Blob service for one account.
type fakeBlobService struct {
	mu         sync.Mutex
	containers map[string]bool
	blobs      map[string]storedAzureBlob
	failPuts   int
	putCalls   int
}

func (f *fakeBlobService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/devstoreaccount1/")
	container, key, _ := strings.Cut(path, "/")

	if r.URL.Query().Get("restype") == "container" {
		switch r.Method {
		case http.MethodPut:
			if f.containers[container] {
				fail(w, http.StatusConflict, "ContainerAlreadyExists")
				return
			}
			f.containers[container] = true
			w.WriteHeader(http.StatusCreated)
		default:
			if !f.containers[container] {
				fail(w, http.StatusNotFound, "ContainerNotFound")
				return
			}
			w.WriteHeader(http.StatusOK)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		f.putCalls++
		if f.failPuts > 0 {
			f.failPuts--
			fail(w, http.StatusServiceUnavailable, "ServerBusy")
			return
		}
		data, _ := io.ReadAll(r.Body)
		meta := map[string]string{}
		for name, values := range r.Header {
			if m, ok := strings.CutPrefix(strings.ToLower(name), "x-ms-meta-"); ok {
				meta[m] = values[0]
			}
		}
		f.blobs[container+"/"+key] = storedAzureBlob{
			data:        data,
			contentType: r.Header.Get("x-ms-blob-content-type"),
			metadata:    meta,
		}
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		if !f.containers[container] {
			fail(w, http.StatusNotFound, "ContainerNotFound")
			return
		}
		if _, ok := f.blobs[container+"/"+key]; !ok {
			fail(w, http.StatusNotFound, "BlobNotFound")
			return
		}
		delete(f.blobs, container+"/"+key)
		w.WriteHeader(http.StatusAccepted)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func fail(w http.ResponseWriter, status int, code string) {
	w.Header().Set("x-ms-error-code", code)
	w.WriteHeader(status)
}

func newTestAzureStore(t *testing.T) (*AzureStore, *fakeBlobService) {
	t.Helper()
	fake := &fakeBlobService{containers: map[string]bool{}, blobs: map[string]storedAzureBlob{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	connStr := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=" + devAccountKey +
		";BlobEndpoint=" + server.URL + "/devstoreaccount1;"
	s, err := newAzureStore(config.AzureBlobSettings{
		AccountName:      "devstoreaccount1",
		ConnectionString: connStr,
		Container:        "sharepoint-ingestion",
	}, policy.RetryOptions{MaxRetries: maxRetries, RetryDelay: time.Millisecond, MaxRetryDelay: time.Millisecond}, nil)
	require.NoError(t, err)
	return s, fake
}

func TestAzureStorePutCreatesContainerAndBlob(t *testing.T) {
	s, fake := newTestAzureStore(t)
	ctx := context.Background()

	err := s.Put(ctx, "Budget.xlsx", []byte("sheet"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		map[string]string{"Title": "Budget", "ItemId": "item-1"})
	require.NoError(t, err)

	assert.True(t, fake.containers["sharepoint-ingestion"])
	stored, ok := fake.blobs["sharepoint-ingestion/Budget.xlsx"]
	require.True(t, ok)
	assert.Equal(t, []byte("sheet"), stored.data)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", stored.contentType)
	assert.Equal(t, "Budget", stored.metadata["title"])
	assert.Equal(t, "item-1", stored.metadata["itemid"])

	// Second upload overwrites and tolerates the existing container.
	require.NoError(t, s.Put(ctx, "Budget.xlsx", []byte("v2"), "text/plain", nil))
	assert.Equal(t, []byte("v2"), fake.blobs["sharepoint-ingestion/Budget.xlsx"].data)
}

func TestAzureStoreRetriesFiveAttempts(t *testing.T) {
	s, fake := newTestAzureStore(t)
	fake.failPuts = 10

	err := s.Put(context.Background(), "a.pdf", []byte("x"), "application/pdf", nil)
	require.ErrorIs(t, err, ErrStoreWriteFailed)
	assert.Equal(t, 5, fake.putCalls)
}

func TestAzureStoreRetryRecovers(t *testing.T) {
	s, fake := newTestAzureStore(t)
	fake.failPuts = 2

	require.NoError(t, s.Put(context.Background(), "a.pdf", []byte("x"), "application/pdf", nil))
	assert.Equal(t, 3, fake.putCalls)
}

func TestAzureStoreDelete(t *testing.T) {
	s, fake := newTestAzureStore(t)
	ctx := context.Background()

	err := s.Delete(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrBlobNotFound, "container does not exist yet")

	require.NoError(t, s.Put(ctx, "a.pdf", []byte("x"), "application/pdf", nil))
	require.NoError(t, s.Delete(ctx, "a.pdf"))
	assert.Empty(t, fake.blobs)

	err = s.Delete(ctx, "a.pdf")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestAzureStoreHealth(t *testing.T) {
	s, _ := newTestAzureStore(t)
	assert.NoError(t, s.Health(context.Background()))
	assert.Equal(t, "sharepoint-ingestion", s.Container())
}

func TestNewAzureStoreValidatesSettings(t *testing.T) {
	_, err := NewAzureStore(config.AzureBlobSettings{AccountName: "a"}, nil)
	require.ErrorIs(t, err, config.ErrMissingSetting)
	assert.Contains(t, err.Error(), "ConnectionString")
}
