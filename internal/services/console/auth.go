package console

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
)

const (
	sessionIssuer     = "lolworlds-console"
	defaultSessionTTL = 8 * time.Hour
	minSessionKeyLen  = 32
)

// Role selects what a console user may do.
type Role string

const (
	// RoleAdmin may run INSERT, UPDATE and DELETE statements.
	RoleAdmin Role = "admin_user"
	// RoleManager may run INSERT and UPDATE statements.
	RoleManager Role = "manager_user"
	// RoleRegular may only read.
	RoleRegular Role = "regular_user"
)

// Roles lists the selectable roles in login order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleRegular}
}

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	role := Role(strings.TrimSpace(value))
	for _, known := range Roles() {
		if role == known {
			return role, nil
		}
	}
	return "", apperrors.New(apperrors.CodeLoginUnknownRole, fmt.Sprintf("unknown role %q", value))
}

// CanModify reports whether the role may run any data modification.
func (r Role) CanModify() bool {
	return r == RoleAdmin || r == RoleManager
}

// Allows reports whether the role may run a statement with verb.
func (r Role) Allows(verb string) bool {
	switch strings.ToUpper(verb) {
	case verbInsert, verbUpdate:
		return r.CanModify()
	case verbDelete:
		return r == RoleAdmin
	default:
		return false
	}
}

// Session identifies a signed-in console user.
type Session struct {
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// AuthConfig holds role passwords and session signing settings.
type AuthConfig struct {
	Passwords  map[Role]string
	SessionKey []byte
	SessionTTL time.Duration
	Now        func() time.Time
}

// Authenticator checks role passwords and signs session tokens.
type Authenticator struct {
	passwords map[Role]string
	key       []byte
	ttl       time.Duration
	now       func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewAuthenticator validates cfg. A missing session key is replaced by a
// random one, so sessions end when the process restarts.
func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	key := cfg.SessionKey
	if len(key) == 0 {
		key = make([]byte, minSessionKeyLen)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	if len(key) < minSessionKeyLen {
		return nil, fmt.Errorf("session key must be at least %d bytes", minSessionKeyLen)
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	passwords := make(map[Role]string, len(cfg.Passwords))
	for role, password := range cfg.Passwords {
		if password != "" {
			passwords[role] = password
		}
	}
	return &Authenticator{passwords: passwords, key: key, ttl: ttl, now: now}, nil
}

// Login checks the password for role and returns a new session.
func (a *Authenticator) Login(username, password, role string) (Session, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return Session{}, apperrors.New(apperrors.CodeLoginEmptyCredentials, "Username/Password cannot be empty")
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return Session{}, err
	}
	expected, ok := a.passwords[parsed]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return Session{}, apperrors.New(apperrors.CodeLoginInvalid, "Invalid username, password or role.")
	}
	return Session{
		Username:  username,
		Role:      parsed,
		ExpiresAt: a.now().Add(a.ttl).UTC().Truncate(time.Second),
	}, nil
}

// Sign encodes session as an HS256 token.
func (a *Authenticator) Sign(session Session) (string, error) {
	now := a.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Role: string(session.Role),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Verify decodes and validates a session token.
func (a *Authenticator) Verify(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, apperrors.New(apperrors.CodeSessionInvalid, "session is required")
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, apperrors.Wrap(apperrors.CodeSessionExpired, "session expired", err)
		}
		return Session{}, apperrors.Wrap(apperrors.CodeSessionInvalid, "session is invalid", err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil || strings.TrimSpace(claims.Subject) == "" {
		return Session{}, apperrors.New(apperrors.CodeSessionInvalid, "session is invalid")
	}
	return Session{
		Username:  claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
