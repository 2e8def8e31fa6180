package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
)

// GistStore stores blobs as private GitHub gists.
type GistStore struct {
	client *github.Client
	http   *http.Client
	token  string
}

// NewGistStore constructs a store authenticated with token. An empty
// apiURL uses the public GitHub API.
func NewGistStore(httpClient *http.Client, token, apiURL string) (*GistStore, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("gateway: parse api url: %w", err)
		}
		client.BaseURL = base
	}
	return &GistStore{client: client, http: httpClient, token: token}, nil
}

// Create implements BlobStore.
func (s *GistStore) Create(ctx context.Context, description string, file File) (string, error) {
	gist, _, err := s.client.Gists.Create(ctx, &github.Gist{
		Description: github.String(description),
		Public:      github.Bool(false),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(file.Name): {Content: github.String(file.Content)},
		},
	})
	if err != nil {
		return "", err
	}
	return gist.GetID(), nil
}

// Update implements BlobStore.
func (s *GistStore) Update(ctx context.Context, id string, file File) error {
	_, resp, err := s.client.Gists.Edit(ctx, id, &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(file.Name): {Content: github.String(file.Content)},
		},
	})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return ErrBlobNotFound
	}
	return err
}

// Files implements BlobStore. Files whose inline content is missing are
// fetched from their raw URL.
func (s *GistStore) Files(ctx context.Context, id string) ([]File, error) {
	gist, resp, err := s.client.Gists.Get(ctx, id)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(gist.Files))
	for name, f := range gist.Files {
		filename := f.GetFilename()
		if filename == "" {
			filename = string(name)
		}
		content := f.GetContent()
		if content == "" && f.GetRawURL() != "" {
			if content, err = s.raw(ctx, f.GetRawURL()); err != nil {
				return nil, err
			}
		}
		files = append(files, File{Name: filename, Content: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *GistStore) raw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New(strings.TrimSpace(string(body)))
	}
	return string(body), nil
}
