package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileKV keeps every key in one indented JSON object on disk. Writes go to a temp file
// that is renamed over the original.
type FileKV struct {
	path string
	mu   sync.Mutex
}

func NewFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure state dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init state file: %w", err)
	}
	_ = f.Close()
	return &FileKV{path: path}, nil
}

func (kv *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	data, err := kv.load()
	if err != nil {
		return nil, err
	}
	v, ok := data[key]
	if !ok {
		return nil, ErrNotFound
	}
	// stored indented; hand back the compact form
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, fmt.Errorf("compact %q: %w", key, err)
	}
	return buf.Bytes(), nil
}

func (kv *FileKV) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	data, err := kv.load()
	if err != nil {
		return err
	}
	data[key] = json.RawMessage(value)
	return kv.save(data)
}

func (kv *FileKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	data, err := kv.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return kv.save(data)
}

func (kv *FileKV) load() (map[string]json.RawMessage, error) {
	f, err := os.Open(kv.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	data := map[string]json.RawMessage{}
	if err := json.NewDecoder(f).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		// An unreadable document is moved aside and read as empty so the store can reseed.
		aside := kv.path + ".corrupt"
		if rerr := os.Rename(kv.path, aside); rerr != nil {
			return nil, fmt.Errorf("decode state: %w (move aside: %v)", err, rerr)
		}
		log.Printf("❌ state file %s is unreadable, moved to %s: %v", kv.path, aside, err)
		return map[string]json.RawMessage{}, nil
	}
	return data, nil
}

func (kv *FileKV) save(data map[string]json.RawMessage) error {
	tmp := kv.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp, kv.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
