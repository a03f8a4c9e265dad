package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
)

const (
	collectionSessions = "sessions"
	sessionTTL         = 24 * time.Hour
)

var (
	errNoSession      = errors.New("invalid token")
	errSessionExpired = errors.New("token expired")
)

// sessionStore keeps bearer sessions in the record backend so they
// survive a server restart.
type sessionStore struct {
	backend taskstore.Persistence
	ttl     time.Duration
	now     func() time.Time
}

func newSessionStore(backend taskstore.Persistence, ttl time.Duration) *sessionStore {
	return &sessionStore{backend: backend, ttl: ttl, now: time.Now}
}

// create issues a new session for username
func (st *sessionStore) create(ctx context.Context, username string) (model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return model.Session{}, fmt.Errorf("failed to generate token: %w", err)
	}

	now := st.now()
	sess := model.Session{
		Token:     hex.EncodeToString(tokenBytes),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, err
	}
	if err := st.backend.Put(ctx, collectionSessions, sess.Token, data); err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// lookup returns the live session for token. Expired sessions are removed.
func (st *sessionStore) lookup(ctx context.Context, token string) (model.Session, error) {
	data, ok, err := st.backend.Get(ctx, collectionSessions, token)
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, errNoSession
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if st.now().After(sess.ExpiresAt) {
		_ = st.backend.Delete(ctx, collectionSessions, token)
		return model.Session{}, errSessionExpired
	}
	return sess, nil
}

func (st *sessionStore) revoke(ctx context.Context, token string) error {
	return st.backend.Delete(ctx, collectionSessions, token)
}
