package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	sample := testutil.SampleProjects()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(contract.FromProjects(sample))
	})
	mux.HandleFunc("/v1/projects/search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(contract.FromProjects(rankSearch(sample, r.URL.Query().Get("q"))))
	})
	mux.HandleFunc("/v1/projects/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
		for _, p := range sample {
			if p.ID == id {
				_ = json.NewEncoder(w).Encode(contract.FromProject(p))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(contract.ErrorBody{Error: "project not found"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteProjectStore_Reads(t *testing.T) {
	srv := newFakeAPI(t)
	store := NewRemoteProjectStore(srv.URL+"/", nil)
	ctx := context.Background()

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, "2015-07-12", all[1].StartDateString())

	p, err := store.FindByID(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Mambilla Hydroelectric Power Project", p.Name)

	_, err = store.FindByID(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)

	hits, err := store.Search(ctx, "abuja")
	require.NoError(t, err)
	assert.Equal(t, []string{"Abuja Light Rail Project"}, names(hits))
}

func TestRemoteProjectStore_IsReadOnly(t *testing.T) {
	store := NewRemoteProjectStore("http://127.0.0.1:0", nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.Add(ctx, testutil.NewTestProject("x")), ErrReadOnly)
	assert.ErrorIs(t, store.Update(ctx, testutil.NewTestProject("x")), ErrReadOnly)
	assert.ErrorIs(t, store.Delete(ctx, "1"), ErrReadOnly)
}

func TestRemoteProjectStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"database locked"}`))
	}))
	defer srv.Close()

	_, err := NewRemoteProjectStore(srv.URL, nil).All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "database locked")
}
