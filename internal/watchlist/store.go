package watchlist

// Durable registry of monitored accounts.
// Each chat has its own entries; the same account can be watched by many
// chats, each with an independent last-observed balance.

import (
	"errors"
	"os"
	"sync"

	"near-monitor/internal/infra/fs"
	logging "near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Rename when no entry matches the given key.
var ErrNotFound = errors.New("account not found")

// Entry is one (account, chat) monitoring relationship.
// LastBalance nil means the account has not been sampled yet; the first
// successful poll after an add or rename always counts as a change.
type Entry struct {
	AccountID   string  `json:"account_id"`
	LastBalance *Amount `json:"last_balance"`
	ChatID      int64   `json:"chat_id"`
}

// Store owns all monitored entries. Every mutating method runs as a single
// critical section: lock, mutate in memory, rewrite the snapshot file,
// unlock. A persist failure is logged and the in-memory state stays
// authoritative; the next successful mutation rewrites the full snapshot.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	path    string
}

// Load reads the watchlist snapshot from path. A missing, unreadable or
// corrupt file yields an empty store, never an error.
func Load(path string) *Store {
	s := &Store{path: path}

	if err := fs.LoadSnapshot(path, &s.entries); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogInfo("Watchlist file does not exist, starting with empty state",
				zap.String("file", path))
		} else {
			logging.LogWarn("Failed to load watchlist, starting with empty state",
				zap.String("file", path), zap.Error(err))
		}
		s.entries = nil
	}

	logging.LogInfo("Watchlist loaded",
		zap.Int("entries", len(s.entries)), zap.String("file", path))

	return s
}

// Add inserts a new unsampled entry for (accountID, chatID).
// Returns false without mutation if the key is already present.
func (s *Store) Add(accountID string, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(accountID, chatID) != nil {
		logging.LogDebug("Account already monitored",
			zap.String("account", accountID), zap.Int64("chat_id", chatID))
		return false
	}

	s.entries = append(s.entries, Entry{AccountID: accountID, ChatID: chatID})
	s.persistLocked()

	logging.LogInfo("Account added",
		zap.String("account", accountID), zap.Int64("chat_id", chatID))
	return true
}

// Remove deletes the entry matching (accountID, chatID) exactly.
// Returns whether an entry was removed; persists only on success.
func (s *Store) Remove(accountID string, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := false
	for _, e := range s.entries {
		if e.AccountID == accountID && e.ChatID == chatID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept

	if removed {
		s.persistLocked()
		logging.LogInfo("Account removed",
			zap.String("account", accountID), zap.Int64("chat_id", chatID))
	} else {
		logging.LogDebug("Account not found for removal",
			zap.String("account", accountID), zap.Int64("chat_id", chatID))
	}

	return removed
}

// Rename changes the account ID of the entry matching (oldID, chatID) and
// resets its balance so the next poll cycle samples it fresh.
func (s *Store) Rename(oldID string, chatID int64, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.findLocked(oldID, chatID)
	if entry == nil {
		logging.LogDebug("Account not found for rename",
			zap.String("account", oldID), zap.Int64("chat_id", chatID))
		return ErrNotFound
	}

	entry.AccountID = newID
	entry.LastBalance = nil // force a fresh sample on the next cycle
	s.persistLocked()

	logging.LogInfo("Account renamed",
		zap.String("old", oldID), zap.String("new", newID), zap.Int64("chat_id", chatID))
	return nil
}

// UpdateBalance records a freshly observed balance for (accountID, chatID).
// Returns whether the entry was found. The snapshot is rewritten only when
// the value actually changed, to avoid redundant disk writes. A nil balance
// is rejected; only Rename clears a recorded balance.
func (s *Store) UpdateBalance(accountID string, chatID int64, balance *Amount) bool {
	if balance == nil {
		logging.LogWarn("Ignoring nil balance update",
			zap.String("account", accountID), zap.Int64("chat_id", chatID))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.findLocked(accountID, chatID)
	if entry == nil {
		logging.LogWarn("Account not found for balance update",
			zap.String("account", accountID), zap.Int64("chat_id", chatID))
		return false
	}

	if !amountsEqual(entry.LastBalance, balance) {
		entry.LastBalance = AmountOf(&balance.Int)
		s.persistLocked()
		logging.LogDebug("Balance updated",
			zap.String("account", accountID),
			zap.Int64("chat_id", chatID),
			zap.String("balance", balance.String()))
	}

	return true
}

// ListFor returns a copy of the entries belonging to one chat.
func (s *Store) ListFor(chatID int64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.ChatID == chatID {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns a copy of all entries. The poll cycle works off this
// copy so no network call ever happens while the store lock is held.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func (s *Store) findLocked(accountID string, chatID int64) *Entry {
	for i := range s.entries {
		if s.entries[i].AccountID == accountID && s.entries[i].ChatID == chatID {
			return &s.entries[i]
		}
	}
	return nil
}

func (s *Store) persistLocked() {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	if err := fs.SaveSnapshot(s.path, entries); err != nil {
		logging.LogError("Failed to persist watchlist",
			zap.String("file", s.path), zap.Error(err))
	}
}
