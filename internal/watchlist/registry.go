package watchlist

import (
	"errors"
	"os"
	"slices"
	"sync"

	"near-monitor/internal/infra/fs"
	logging "near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// Registry is the durable, append-only set of chats that have ever talked
// to the bot. It is used for broadcast-style notices on restart.
type Registry struct {
	mu    sync.Mutex
	users map[int64]struct{}
	path  string
}

// LoadRegistry reads the subscriber snapshot from path. A missing or corrupt
// file yields an empty registry, never an error.
func LoadRegistry(path string) *Registry {
	r := &Registry{
		users: make(map[int64]struct{}),
		path:  path,
	}

	var ids []int64
	if err := fs.LoadSnapshot(path, &ids); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogInfo("Users file does not exist, starting with empty state",
				zap.String("file", path))
		} else {
			logging.LogWarn("Failed to load users, starting with empty state",
				zap.String("file", path), zap.Error(err))
		}
		ids = nil
	}
	for _, id := range ids {
		r.users[id] = struct{}{}
	}

	logging.LogInfo("User registry loaded",
		zap.Int("user_count", len(r.users)), zap.String("file", path))

	return r
}

// Register records a chat ID. Returns true and persists the set if the ID
// is new; a known ID is a no-op without I/O.
func (r *Registry) Register(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; ok {
		return false
	}

	r.users[id] = struct{}{}
	r.persistLocked()

	logging.LogInfo("User registered", zap.Int64("chat_id", id))
	return true
}

// All returns a copy of every registered chat ID, order unspecified.
func (r *Registry) All() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}

func (r *Registry) persistLocked() {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	slices.Sort(ids) // stable file content across saves

	if err := fs.SaveSnapshot(r.path, ids); err != nil {
		logging.LogError("Failed to persist user registry",
			zap.String("file", r.path), zap.Error(err))
	}
}
