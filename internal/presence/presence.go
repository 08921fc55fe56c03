package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/avilaj/tablero-api/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Entry is one live session on a board. The user snapshot rides along
// in the Redis value so listing presence never touches Postgres.
type Entry struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
}

// Service tracks who is looking at which board. Each heartbeat writes
// a key with a TTL; sessions that stop beating expire on their own, so
// a killed browser tab never leaves a ghost behind.
type Service struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewService(client *redis.Client, ttl time.Duration) *Service {
	return &Service{redis: client, ttl: ttl}
}

func (s *Service) Heartbeat(ctx context.Context, boardID uuid.UUID, sessionID string, user *models.User) error {
	entry := Entry{
		SessionID: sessionID,
		UserID:    user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		LastSeen:  time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(boardID, sessionID), data, s.ttl).Err()
}

// List returns one entry per user. A user with several tabs open has a
// session key per tab; the entry with the freshest heartbeat wins.
func (s *Service) List(ctx context.Context, boardID uuid.UUID) ([]Entry, error) {
	byUser := make(map[uuid.UUID]Entry)

	iter := s.redis.Scan(ctx, 0, boardPattern(boardID), 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				// Expired between SCAN and GET.
				continue
			}
			return nil, err
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if cur, ok := byUser[entry.UserID]; !ok || entry.LastSeen.After(cur.LastSeen) {
			byUser[entry.UserID] = entry
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Service) Disconnect(ctx context.Context, boardID uuid.UUID, sessionID string) error {
	return s.redis.Del(ctx, sessionKey(boardID, sessionID)).Err()
}

func sessionKey(boardID uuid.UUID, sessionID string) string {
	return fmt.Sprintf("presence:%s:%s", boardID, sessionID)
}

func boardPattern(boardID uuid.UUID) string {
	return fmt.Sprintf("presence:%s:*", boardID)
}
