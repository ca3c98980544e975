package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/domain"
)

// RemoteProjectStore reads projects from another budeshi instance over its
// HTTP API. It is read-only; the write methods return ErrReadOnly.
type RemoteProjectStore struct {
	baseURL string
	http    *http.Client
}

// NewRemoteProjectStore points the store at baseURL (e.g. http://host:8080).
// A nil client gets a default with a 5s dial timeout.
func NewRemoteProjectStore(baseURL string, client *http.Client) *RemoteProjectStore {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		}
	}
	return &RemoteProjectStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

func (s *RemoteProjectStore) All(ctx context.Context) ([]domain.Project, error) {
	var list contract.ProjectList
	if err := s.get(ctx, "/v1/projects", nil, &list); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return list.ToProjects()
}

func (s *RemoteProjectStore) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var p contract.Project
	if err := s.get(ctx, "/v1/projects/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, fmt.Errorf("project %q: %w", id, err)
	}
	dp, err := p.ToProject()
	if err != nil {
		return nil, err
	}
	return &dp, nil
}

func (s *RemoteProjectStore) Search(ctx context.Context, term string) ([]domain.Project, error) {
	var list contract.ProjectList
	if err := s.get(ctx, "/v1/projects/search", url.Values{"q": {term}}, &list); err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	return list.ToProjects()
}

func (s *RemoteProjectStore) Add(context.Context, *domain.Project) error    { return ErrReadOnly }
func (s *RemoteProjectStore) Update(context.Context, *domain.Project) error { return ErrReadOnly }
func (s *RemoteProjectStore) Delete(context.Context, string) error          { return ErrReadOnly }

func (s *RemoteProjectStore) get(ctx context.Context, path string, query url.Values, out any) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		var eb contract.ErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return fmt.Errorf("remote returned status %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("remote returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
