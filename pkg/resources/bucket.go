package resources

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrObjectNotFound is returned when a bucket object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Bucket is a filesystem-backed object store. Each object is one file under
// the bucket root with a JSON sidecar for its metadata; keys are encoded so
// arbitrary key strings cannot escape the root.
type Bucket struct {
	binding string
	name    string
	root    string

	mu sync.RWMutex
}

// ObjectInfo describes a stored object without its body.
type ObjectInfo struct {
	Key         string            `json:"key"`
	Size        int64             `json:"size"`
	ContentType string            `json:"contentType,omitempty"`
	Uploaded    time.Time         `json:"uploaded"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ObjectPutOptions carries optional object attributes for a put.
type ObjectPutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// NewBucket creates a bucket rooted under dir. The directory is created on
// first use.
func NewBucket(binding, name, dir string) (*Bucket, error) {
	root := filepath.Join(dir, "buckets", name)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating bucket directory: %w", err)
	}
	return &Bucket{binding: binding, name: name, root: root}, nil
}

// Binding returns the binding name this bucket serves.
func (b *Bucket) Binding() string { return b.binding }

// Name returns the bucket name.
func (b *Bucket) Name() string { return b.name }

// Put stores an object, replacing any existing one under the same key.
func (b *Bucket) Put(key string, data []byte, opts ObjectPutOptions) (*ObjectInfo, error) {
	info := &ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: opts.ContentType,
		Uploaded:    time.Now().UTC(),
		Metadata:    opts.Metadata,
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encoding object metadata: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.objectPath(key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing object: %w", err)
	}
	if err := os.WriteFile(path+metaSuffix, meta, 0644); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing object metadata: %w", err)
	}
	return info, nil
}

// Get returns an object's metadata and body.
func (b *Bucket) Get(key string) (*ObjectInfo, []byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	info, err := b.readMeta(key)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(b.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, nil, fmt.Errorf("reading object: %w", err)
	}
	return info, data, nil
}

// Head returns an object's metadata without reading its body.
func (b *Bucket) Head(key string) (*ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readMeta(key)
}

// Delete removes an object. Deleting a missing object is not an error.
func (b *Bucket) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.objectPath(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object: %w", err)
	}
	if err := os.Remove(path + metaSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object metadata: %w", err)
	}
	return nil
}

// List returns metadata for every object whose key starts with prefix,
// sorted by key.
func (b *Bucket) List(prefix string) ([]*ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dirEntries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("listing bucket: %w", err)
	}

	infos := make([]*ObjectInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		key, ok := decodeKey(strings.TrimSuffix(name, metaSuffix))
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		info, err := b.readMeta(key)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

const metaSuffix = ".meta.json"

func (b *Bucket) objectPath(key string) string {
	return filepath.Join(b.root, encodeKey(key))
}

func (b *Bucket) readMeta(key string) (*ObjectInfo, error) {
	data, err := os.ReadFile(b.objectPath(key) + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("reading object metadata: %w", err)
	}
	var info ObjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding object metadata: %w", err)
	}
	return &info, nil
}

// Keys become flat filenames so slashes and dots in keys cannot traverse
// outside the bucket root.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeKey(name string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", false
	}
	return string(b), true
}
