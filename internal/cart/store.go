package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const CartTTL = 30 * 24 * time.Hour // 30 jours

// Notifications publiées à chaque changement de panier.
const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// Store conserve un panier par caissier.
type Store interface {
	Load(ctx context.Context, userID string) (Cart, error)
	Save(ctx context.Context, userID string, c Cart) error
	Clear(ctx context.Context, userID string) error
	// Subscribe reçoit les notifications du panier jusqu'à l'appel de la fonction retournée.
	Subscribe(ctx context.Context, userID string) (<-chan string, func())
}

func cartKey(userID string) string {
	return "cart:" + userID
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, userID string) (Cart, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) || data == "" {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("lecture panier: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c.Items); err != nil {
		return Cart{}, fmt.Errorf("décodage panier: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, c Cart) error {
	key := cartKey(userID)

	pipe := s.client.Pipeline()
	if c.IsEmpty() {
		pipe.Del(ctx, key)
	} else {
		data, err := json.Marshal(c.Items)
		if err != nil {
			return fmt.Errorf("encodage panier: %w", err)
		}
		pipe.Set(ctx, key, data, CartTTL)
	}
	pipe.Publish(ctx, key, EventUpdated)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	key := cartKey(userID)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Publish(ctx, key, EventCleared)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context, userID string) (<-chan string, func()) {
	pubsub := s.client.Subscribe(ctx, cartKey(userID))
	out := make(chan string, 8)

	done := make(chan struct{})
	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}
}

// MemoryStore : paniers en mémoire quand Redis n'est pas configuré.
type MemoryStore struct {
	mu          sync.Mutex
	carts       map[string][]byte
	subscribers map[string]map[chan string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:       make(map[string][]byte),
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Les paniers sont stockés encodés pour que l'appelant ne partage jamais de slices.
func (s *MemoryStore) Load(_ context.Context, userID string) (Cart, error) {
	s.mu.Lock()
	data, ok := s.carts[userID]
	s.mu.Unlock()
	if !ok {
		return Cart{}, nil
	}

	var c Cart
	if err := json.Unmarshal(data, &c.Items); err != nil {
		return Cart{}, fmt.Errorf("décodage panier: %w", err)
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		delete(s.carts, userID)
	} else {
		data, err := json.Marshal(c.Items)
		if err != nil {
			return fmt.Errorf("encodage panier: %w", err)
		}
		s.carts[userID] = data
	}
	s.publish(userID, EventUpdated)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	s.publish(userID, EventCleared)
	return nil
}

func (s *MemoryStore) Subscribe(_ context.Context, userID string) (<-chan string, func()) {
	ch := make(chan string, 8)

	s.mu.Lock()
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[chan string]struct{})
	}
	s.subscribers[userID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[userID], ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish doit être appelé avec s.mu verrouillé.
func (s *MemoryStore) publish(userID, event string) {
	for ch := range s.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
