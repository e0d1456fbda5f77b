package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/chat"
)

// snapshotKey is the single row the conversation state lives under.
const snapshotKey = "conversation_state"

// Adapter is the write-through sink for conversation snapshots. Save is
// called on every applied transition, so it must never propagate a
// failure back into the send path: errors are logged and swallowed.
type Adapter struct {
	db     *DB
	logger *zap.Logger
}

func NewAdapter(db *DB, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{db: db, logger: logger}
}

// Save serializes the snapshot and upserts it under the fixed key.
func (a *Adapter) Save(state *chat.State) {
	if state == nil {
		return
	}
	value, err := json.Marshal(state)
	if err != nil {
		a.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	_, err = a.db.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		snapshotKey, value, time.Now().UnixMilli(),
	)
	if err != nil {
		a.logger.Error("write snapshot", zap.Error(err))
	}
}

// Load returns the last saved snapshot, or nil when none exists or the
// stored payload cannot be decoded. A corrupt row is a fresh start, not
// a fatal condition.
func (a *Adapter) Load() *chat.State {
	var value []byte
	err := a.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, snapshotKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		a.logger.Error("read snapshot", zap.Error(err))
		return nil
	}

	state := chat.NewState()
	if err := json.Unmarshal(value, state); err != nil {
		a.logger.Warn("stored snapshot is corrupt, starting fresh", zap.Error(err))
		return nil
	}
	return state
}
