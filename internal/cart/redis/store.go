// Package redis implements the cart store on Redis. Each user's cart is one
// hash keyed service:cart:{userID}, field = cart line id, value = JSON line.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mincheol-dev/sneakershop/internal/cart"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client  *redis.Client
	service string
}

var _ cart.Store = (*Store)(nil)

func NewStore(addr, serviceName string) *Store {
	return &Store{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		service: serviceName,
	}
}

// NewStoreWithClient is used by tests and callers that manage the client
// themselves.
func NewStoreWithClient(client *redis.Client, serviceName string) *Store {
	return &Store{client: client, service: serviceName}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("%s:cart:%s", s.service, userID)
}

func (s *Store) AddLine(ctx context.Context, userID string, line cart.Line) error {
	payload, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("cart: encode line %s: %w", line.ID, err)
	}
	if err := s.client.HSet(ctx, s.key(userID), line.ID, payload).Err(); err != nil {
		return fmt.Errorf("cart: add line %s for user %s: %w", line.ID, userID, err)
	}
	return nil
}

func (s *Store) ListLines(ctx context.Context, userID string) ([]cart.Line, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: list lines for user %s: %w", userID, err)
	}

	lines := make([]cart.Line, 0, len(fields))
	for id, payload := range fields {
		var line cart.Line
		if err := json.Unmarshal([]byte(payload), &line); err != nil {
			return nil, fmt.Errorf("cart: decode line %s: %w", id, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Store) RemoveLines(ctx context.Context, userID string, lineIDs []string) error {
	if len(lineIDs) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(userID), lineIDs...).Err(); err != nil {
		return fmt.Errorf("cart: remove lines for user %s: %w", userID, err)
	}
	return nil
}
