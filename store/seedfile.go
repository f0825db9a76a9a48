package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	lockTimeout       = 3 * time.Second
	lockRetryInterval = 100 * time.Millisecond
)

// MarshalSeed encodes seed as "json" or "yaml".
func MarshalSeed(seed Seed, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(seed, "", "  ")
	case "yaml", "yml", "":
		return yaml.Marshal(seed)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
}

// SaveSeedFile writes seed to path, replacing it atomically. Concurrent
// writers serialize on path + ".lock".
func SaveSeedFile(ctx context.Context, path string, seed Seed) error {
	data, err := MarshalSeed(seed, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire file lock for %s", path)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write seed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write seed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
