package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

var (
	ErrHTTPStatus   = errors.New("unexpected http status")
	ErrNotScene     = errors.New("not an excalidraw scene")
	ErrNotLibrary   = errors.New("not an excalidraw library")
	ErrEmptyLibrary = errors.New("library has no items")
)

// HTTPSceneLoader loads scenes shared through the Excalidraw JSON backend.
type HTTPSceneLoader struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSceneLoader(baseURL string, client *http.Client) *HTTPSceneLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSceneLoader{BaseURL: baseURL, Client: client}
}

func (l *HTTPSceneLoader) LoadScene(ctx context.Context, id, key string) (scene.Payload, error) {
	body, err := fetch(ctx, l.Client, l.BaseURL+id, 0)
	if err != nil {
		return scene.Payload{}, fmt.Errorf("fetch scene %s: %w", id, err)
	}

	data := body
	if key != "" {
		data, err = DecodeScenePayload(body, key)
		if err != nil {
			return scene.Payload{}, fmt.Errorf("decode scene %s: %w", id, err)
		}
	}

	s, err := ParseScene(data)
	if err != nil {
		return scene.Payload{}, fmt.Errorf("parse scene %s: %w", id, err)
	}
	return s.Payload(), nil
}

// FileSceneLoader reads .excalidraw files from disk; the id is the path.
type FileSceneLoader struct{}

func (FileSceneLoader) LoadScene(ctx context.Context, path, _ string) (scene.Payload, error) {
	if err := ctx.Err(); err != nil {
		return scene.Payload{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scene.Payload{}, err
	}
	s, err := ParseScene(data)
	if err != nil {
		return scene.Payload{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s.Payload(), nil
}

// ParseScene decodes scene JSON. A missing type is accepted; any other
// type than "excalidraw" is not.
func ParseScene(data []byte) (*scene.Scene, error) {
	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Type != "" && s.Type != "excalidraw" {
		return nil, fmt.Errorf("%w: type %q", ErrNotScene, s.Type)
	}
	return &s, nil
}

// fetch GETs url and returns the body. maxBytes > 0 caps the body size.
func fetch(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	var r io.Reader = resp.Body
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("response larger than %d bytes", maxBytes)
	}
	return body, nil
}

func isLibraryPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".excalidrawlib")
}
