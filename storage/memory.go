package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"sort"
	"sync"
)

// MemoryStore keeps uploads in process memory. It backs ASSET_BACKEND=memory
// for local runs and the package tests.
type MemoryStore struct {
	baseURL string

	mu      sync.Mutex
	objects map[string]MemoryObject
}

type MemoryObject struct {
	Folder      string
	Tags        []string
	ContentType string
	Data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://localhost/assets"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]MemoryObject)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Upload(ctx context.Context, obj Object) (*StoredObject, error) {
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := path.Join(obj.Folder, obj.PublicID)
	stored := &StoredObject{PublicID: id, URL: s.baseURL + "/" + id, Bytes: int64(len(data))}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		stored.Width, stored.Height, stored.Format = cfg.Width, cfg.Height, format
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[id]; exists {
		return nil, fmt.Errorf("object %s already exists", id)
	}
	s.objects[id] = MemoryObject{
		Folder:      obj.Folder,
		Tags:        append([]string(nil), obj.Tags...),
		ContentType: obj.ContentType,
		Data:        data,
	}
	return stored, nil
}

func (s *MemoryStore) VariantURL(publicID string, width int) (string, error) {
	return fmt.Sprintf("%s/%s?w=%d", s.baseURL, publicID, width), nil
}

// Object returns a stored upload by public ID.
func (s *MemoryStore) Object(publicID string) (MemoryObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[publicID]
	return obj, ok
}

// PublicIDs lists stored objects in lexical order.
func (s *MemoryStore) PublicIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
