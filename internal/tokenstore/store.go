package tokenstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Store persists the bearer token between runs, the way the browser client
// kept it in localStorage under a single key.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

const tokenKey = "access_token"

type entry struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (entry) TableName() string { return "local_storage" }

type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate token db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (string, error) {
	var e entry
	if err := s.db.Where("key = ?", tokenKey).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return e.Value, nil
}

func (s *SQLiteStore) Save(token string) error {
	e := entry{Key: tokenKey, Value: token}
	if err := s.db.Save(&e).Error; err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.db.Where("key = ?", tokenKey).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Memory is the test double.
type Memory struct {
	mu    sync.Mutex
	token string
}

func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
