// Package settings conserve la configuration du magasin, seule donnée durable du point de vente.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"

	"pos_back_end/internal/models"
)

// RedisKey : clé Redis des réglages.
const RedisKey = "pos:settings"

// Store : Get retourne les valeurs par défaut tant que rien n'a été enregistré.
type Store interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error)
	Reset(ctx context.Context) (models.Settings, error)
}

// --- Redis ---

type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context) (models.Settings, error) {
	data, err := s.client.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("lecture réglages: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Update(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	next := current.Apply(patch)
	if err := s.save(ctx, next); err != nil {
		return models.Settings{}, err
	}
	return next, nil
}

func (s *RedisStore) Reset(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.Del(ctx, RedisKey).Err(); err != nil {
		return models.Settings{}, fmt.Errorf("réinitialisation réglages: %w", err)
	}
	return models.DefaultSettings(), nil
}

func (s *RedisStore) save(ctx context.Context, st models.Settings) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, RedisKey, data, 0).Err(); err != nil {
		return fmt.Errorf("sauvegarde réglages: %w", err)
	}
	return nil
}

// --- Fichier JSON local ---

type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(_ context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() (models.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("lecture %s: %w", s.path, err)
	}
	return decode(data)
}

func (s *FileStore) Update(_ context.Context, patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return models.Settings{}, err
	}
	next := current.Apply(patch)

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return models.Settings{}, err
	}
	// écriture atomique : fichier temporaire puis renommage
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*")
	if err != nil {
		return models.Settings{}, fmt.Errorf("écriture réglages: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return models.Settings{}, fmt.Errorf("écriture réglages: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return models.Settings{}, fmt.Errorf("écriture réglages: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return models.Settings{}, fmt.Errorf("écriture réglages: %w", err)
	}
	return next, nil
}

func (s *FileStore) Reset(_ context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.Settings{}, fmt.Errorf("réinitialisation réglages: %w", err)
	}
	return models.DefaultSettings(), nil
}

// --- Mémoire (tests) ---

type MemoryStore struct {
	mu       sync.Mutex
	settings models.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: models.DefaultSettings()}
}

func (s *MemoryStore) Get(_ context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *MemoryStore) Update(_ context.Context, patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.Apply(patch)
	return s.settings, nil
}

func (s *MemoryStore) Reset(_ context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = models.DefaultSettings()
	return s.settings, nil
}

// decode part des valeurs par défaut : un champ absent du JSON garde sa valeur par défaut.
func decode(data []byte) (models.Settings, error) {
	st := models.DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		return models.Settings{}, fmt.Errorf("décodage réglages: %w", err)
	}
	return st, nil
}
