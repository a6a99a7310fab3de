package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Center collects transient user-facing notifications until the next page
// render drains them. Every notification is mirrored to the log.
type Center struct {
	mu      sync.Mutex
	pending []Notification
	log     *slog.Logger
}

func NewCenter(log *slog.Logger) *Center {
	if log == nil {
		log = slog.Default()
	}
	return &Center{log: log}
}

func (c *Center) Success(msg string) {
	c.push(LevelSuccess, msg)
	c.log.Info("notify", "level", "success", "message", msg)
}

func (c *Center) Error(msg string) {
	c.push(LevelError, msg)
	c.log.Warn("notify", "level", "error", "message", msg)
}

func (c *Center) push(lvl Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, Notification{
		ID:      uuid.NewString(),
		Level:   lvl,
		Message: msg,
		At:      time.Now(),
	})
}

// Drain hands out the pending notifications and resets the queue.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}
