package cart

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName     = "cart_session"
	DefaultIdleTTL = 24 * time.Hour
)

type ctxKey struct{}

type session struct {
	cart     *Cart
	lastSeen time.Time
}

// Sessions хранит по одной корзине на сессию. Только в памяти процесса.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessions(idleTTL time.Duration) *Sessions {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Sessions{sessions: make(map[string]*session), idleTTL: idleTTL, now: time.Now}
}

// Get возвращает корзину сессии, создавая пустую при первом обращении
func (s *Sessions) Get(id string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{cart: New()}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess.cart
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle удаляет сессии, к которым не обращались дольше idleTTL
func (s *Sessions) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run periodically evicts idle sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.EvictIdle()
		}
	}
}

// Middleware resolves the cart session from the cookie, issuing a new one when
// the cookie is missing or malformed, and puts the cart into the request context.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, int(s.idleTTL/time.Second), "/", "", false, true)
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), s.Get(id)))
		c.Next()
	}
}

func NewContext(ctx context.Context, c *Cart) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the cart placed by Middleware, or nil.
func FromContext(ctx context.Context) *Cart {
	c, _ := ctx.Value(ctxKey{}).(*Cart)
	return c
}
