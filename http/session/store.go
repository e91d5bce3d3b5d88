package session

import (
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/boj/redistore"
	gorilla "github.com/gorilla/sessions"
	"github.com/xy-planning-network/signpost"
)

const (
	defaultMaxAge = 86400 // 1 day
	redisPoolSize = 10
)

// The Opener defines reading the Session of an *http.Request.
type Opener interface {
	Open(w http.ResponseWriter, r *http.Request) (Session, error)
}

// A Service opens the sessions kept in a gorilla.Store under one name.
//
// Service implements Opener.
type Service struct {
	name  string
	store gorilla.Store
}

// A Config provides the values every Service requires.
type Config struct {
	Env signpost.Environment

	// The name sessions are stored under; also the name of the cookie.
	SessionName string

	// Hex-encoded key
	AuthKey string

	// Hex-encoded key
	EncryptKey string
}

// settings collects what ServiceOpts set before NewService builds the store.
type settings struct {
	authKey    []byte
	encryptKey []byte
	env        signpost.Environment
	maxAge     int
	newStore   func(settings) (gorilla.Store, error)
}

// keys are the key pairs a store signs and encrypts with.
// Outside Testing, sessions are encrypted as well as signed.
func (s settings) keys() [][]byte {
	if s.env.IsTesting() {
		return [][]byte{s.authKey}
	}

	return [][]byte{s.authKey, s.encryptKey}
}

func (s settings) cookie() *gorilla.Options {
	return &gorilla.Options{
		Path:     "/",
		MaxAge:   s.maxAge,
		Secure:   !(s.env.IsDevelopment() || s.env.IsTesting()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c Config) valid() error {
	if err := c.Env.Valid(); err != nil {
		return err
	}

	if c.SessionName == "" {
		return fmt.Errorf("%w: SessionName cannot be %q", signpost.ErrBadConfig, c.SessionName)
	}

	return nil
}

// NewService builds the store visitor sessions are kept in.
// Sessions are kept in cookies unless an option like WithRedis says otherwise.
func NewService(cfg Config, opts ...ServiceOpt) (Service, error) {
	if err := cfg.valid(); err != nil {
		return Service{}, err
	}

	set := settings{env: cfg.Env, maxAge: defaultMaxAge, newStore: cookieStore}

	var err error
	if set.authKey, err = hex.DecodeString(cfg.AuthKey); err != nil {
		return Service{}, fmt.Errorf("%w: authentication key is not valid: %s", signpost.ErrBadConfig, err)
	}

	if set.encryptKey, err = hex.DecodeString(cfg.EncryptKey); err != nil {
		return Service{}, fmt.Errorf("%w: encryption key is not valid: %s", signpost.ErrBadConfig, err)
	}

	for _, opt := range opts {
		if err := opt(&set); err != nil {
			return Service{}, fmt.Errorf("%w: %s", signpost.ErrBadConfig, err)
		}
	}

	store, err := set.newStore(set)
	if err != nil {
		return Service{}, fmt.Errorf("%w: %s", signpost.ErrBadConfig, err)
	}

	gob.Register(Flash{})
	return Service{name: cfg.SessionName, store: store}, nil
}

// Open retrieves the Session for r, or creates a brand new one.
// Changes to the Session are written to w.
func (s Service) Open(w http.ResponseWriter, r *http.Request) (Session, error) {
	gs, err := s.store.Get(r, s.name)
	if gs == nil {
		gs = gorilla.NewSession(s.store, s.name)
	}

	return Session{s: gs, w: w, r: r}, err
}

// A ServiceOpt adjusts how NewService builds its store.
// Options may be passed in any order.
type ServiceOpt func(*settings) error

func cookieStore(set settings) (gorilla.Store, error) {
	c := gorilla.NewCookieStore(set.keys()...)
	c.Options = set.cookie()
	c.MaxAge(set.maxAge)
	return c, nil
}

// WithCookie keeps sessions in the cookie itself.
func WithCookie() ServiceOpt {
	return func(set *settings) error {
		set.newStore = cookieStore
		return nil
	}
}

// WithMaxAge sets how many seconds a session lives.
func WithMaxAge(secs int) ServiceOpt {
	return func(set *settings) error {
		if secs < 0 {
			return fmt.Errorf("max age cannot be negative: %d", secs)
		}

		set.maxAge = secs
		return nil
	}
}

// WithRedis keeps sessions in the Redis server at addr, authenticating with pass if it is not empty.
func WithRedis(addr, pass string) ServiceOpt {
	return func(set *settings) error {
		set.newStore = func(set settings) (gorilla.Store, error) {
			r, err := redistore.NewRediStore(redisPoolSize, "tcp", addr, pass, set.keys()...)
			if err != nil {
				return nil, fmt.Errorf("failed initializing Redis: %w", err)
			}

			r.Options = set.cookie()
			r.SetMaxAge(set.maxAge)
			return r, nil
		}
		return nil
	}
}

// WithStore keeps sessions in store, as it is configured.
func WithStore(store gorilla.Store) ServiceOpt {
	return func(set *settings) error {
		set.newStore = func(settings) (gorilla.Store, error) { return store, nil }
		return nil
	}
}
