package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	mediaapp "github.com/shopfront/backend/internal/application/media"
)

var _ mediaapp.ObjectStorage = (*MemoryObjectStorage)(nil)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps objects in process memory. It backs local
// development and tests. Presigned URLs point at BaseURL and cannot be used
// to upload, so a presigned key is treated as uploaded with the declared size.
type MemoryObjectStorage struct {
	BaseURL string

	mu        sync.RWMutex
	objects   map[string]memoryObject
	presigned map[string]mediaapp.ObjectInfo
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &MemoryObjectStorage{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		objects:   make(map[string]memoryObject),
		presigned: make(map[string]mediaapp.ObjectInfo),
	}
}

func (m *MemoryObjectStorage) GenerateUploadURL(_ context.Context, key, contentType string, size int64, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	m.mu.Lock()
	m.presigned[key] = mediaapp.ObjectInfo{Size: size, ContentType: contentType}
	m.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return m.signed(key, "upload", expiresAt), expiresAt, nil
}

func (m *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.signed(key, "download", expiresAt), expiresAt, nil
}

func (m *MemoryObjectStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return errKeyRequired
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	delete(m.presigned, key)
	return nil
}

func (m *MemoryObjectStorage) StatObject(_ context.Context, key string) (*mediaapp.ObjectInfo, error) {
	if key == "" {
		return nil, errKeyRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if obj, ok := m.objects[key]; ok {
		return &mediaapp.ObjectInfo{Size: int64(len(obj.data)), ContentType: obj.contentType}, nil
	}
	if info, ok := m.presigned[key]; ok {
		return &info, nil
	}
	return nil, nil
}

func (m *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.presigned, key)
	return nil
}

func (m *MemoryObjectStorage) PublicURL(key string) string {
	return joinURL(m.BaseURL, key)
}

// Object returns the stored bytes for key
func (m *MemoryObjectStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, ok
}

func (m *MemoryObjectStorage) signed(key, op string, expiresAt time.Time) string {
	q := url.Values{}
	q.Set("op", op)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return joinURL(m.BaseURL, key) + "?" + q.Encode()
}
