package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

type libraryItem struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Name     string          `json:"name"`
	Elements []scene.Element `json:"elements"`
}

type libraryFile struct {
	Type         string            `json:"type"`
	Version      int               `json:"version"`
	Source       string            `json:"source"`
	LibraryItems []libraryItem     `json:"libraryItems"`
	Library      [][]scene.Element `json:"library"`
}

// ImportLibrary decodes a .excalidrawlib document into one payload per
// library item. Version 1 ("library") and 2 ("libraryItems") are
// accepted. A null document or one without items is an error.
func ImportLibrary(r io.Reader) ([]scene.Payload, error) {
	var lib *libraryFile
	if err := json.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotLibrary, err)
	}
	if lib == nil {
		return nil, ErrNotLibrary
	}
	if lib.Type != "" && lib.Type != "excalidrawlib" {
		return nil, fmt.Errorf("%w: type %q", ErrNotLibrary, lib.Type)
	}

	groups := make([][]scene.Element, 0, len(lib.LibraryItems)+len(lib.Library))
	for _, item := range lib.LibraryItems {
		groups = append(groups, item.Elements)
	}
	if len(groups) == 0 {
		groups = append(groups, lib.Library...)
	}
	if len(groups) == 0 {
		return nil, ErrEmptyLibrary
	}

	payloads := make([]scene.Payload, len(groups))
	for i, elements := range groups {
		payloads[i] = scene.Payload{
			Elements: scene.RestoreElements(elements),
			Files:    scene.BinaryFiles{},
		}
	}
	return payloads, nil
}

// HTTPLibraryLoader fetches and imports .excalidrawlib files.
type HTTPLibraryLoader struct {
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPLibraryLoader(client *http.Client, maxBytes int64) *HTTPLibraryLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLibraryLoader{Client: client, MaxBytes: maxBytes}
}

func (l *HTTPLibraryLoader) LoadLibrary(ctx context.Context, url string) ([]scene.Payload, error) {
	body, err := fetch(ctx, l.Client, url, l.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}
	payloads, err := ImportLibrary(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("import library %s: %w", url, err)
	}
	return payloads, nil
}

// LoadFile reads a local .excalidraw or .excalidrawlib file. The second
// return value reports whether the file was a library.
func LoadFile(ctx context.Context, path string) ([]scene.Payload, bool, error) {
	if !isLibraryPath(path) {
		p, err := FileSceneLoader{}.LoadScene(ctx, path, "")
		if err != nil {
			return nil, false, err
		}
		return []scene.Payload{p}, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, true, err
	}
	defer f.Close()
	payloads, err := ImportLibrary(f)
	if err != nil {
		return nil, true, fmt.Errorf("import %s: %w", path, err)
	}
	return payloads, true, nil
}
