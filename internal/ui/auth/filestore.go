package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStorage: хранилище сессии в YAML-файле (для CLI).
// Файл перечитывается при каждом Get и переписывается при каждой записи.
type FileStorage struct {
	path string
}

// NewFileStorage создаёт хранилище по пути path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultSessionPath: ~/.config/inquisition-panel/session.yaml.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("каталог конфигурации пользователя: %w", err)
	}
	return filepath.Join(dir, "inquisition-panel", "session.yaml"), nil
}

// Path возвращает путь к файлу.
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", s.path, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileStorage) save(values map[string]string) error {
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("удаление %s: %w", s.path, err)
		}
		return nil
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("сериализация сессии: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("создание каталога сессии: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("запись %s: %w", s.path, err)
	}
	return nil
}

// Get возвращает значение; повреждённый файл считается пустым.
func (s *FileStorage) Get(key string) (string, bool) {
	values, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (s *FileStorage) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStorage) Remove(keys ...string) error {
	values, err := s.load()
	if err != nil {
		return s.save(nil)
	}
	for _, k := range keys {
		delete(values, k)
	}
	return s.save(values)
}
