package approval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTokenTTL is how long a decision link stays valid.
const DefaultTokenTTL = 72 * time.Hour

// Claims are the signed contents of a decision token.
type Claims struct {
	jwt.RegisteredClaims
	RunID   string `json:"runId"`
	Approve bool   `json:"approve"`
}

// Tokens is a mint/redeem pair for one run.
type Tokens struct {
	Approve string
	Reject  string
}

// Issuer mints and redeems single-use decision tokens. Redeemed token
// hashes are tracked so a leaked link cannot flip a decision twice.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration

	mu   sync.Mutex
	used map[string]struct{}
}

// NewIssuer creates a token issuer. The secret must be at least 32 bytes.
func NewIssuer(secret []byte, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		used:   make(map[string]struct{}),
	}, nil
}

// Mint creates an approve token and a reject token for the run. Subject
// names the intended decider and lands in Decision.DecidedBy on redeem.
func (i *Issuer) Mint(runID, subject string) (*Tokens, error) {
	approve, err := i.sign(runID, subject, true)
	if err != nil {
		return nil, err
	}
	reject, err := i.sign(runID, subject, false)
	if err != nil {
		return nil, err
	}
	return &Tokens{Approve: approve, Reject: reject}, nil
}

// Redeem validates a token, marks it used, and records the decision it
// carries into src. Returns the recorded decision.
func (i *Issuer) Redeem(ctx context.Context, token string, src Source) (*Decision, error) {
	claims, err := i.parse(token)
	if err != nil {
		return nil, err
	}

	hash := tokenHash(token)
	i.mu.Lock()
	if _, dup := i.used[hash]; dup {
		i.mu.Unlock()
		return nil, ErrTokenUsed
	}
	i.used[hash] = struct{}{}
	i.mu.Unlock()

	decision := Decision{
		RunID:     claims.RunID,
		Approved:  claims.Approve,
		DecidedBy: claims.Subject,
		DecidedAt: time.Now(),
	}
	if err := src.Record(ctx, decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (i *Issuer) sign(runID, subject string, approve bool) (string, error) {
	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        tokenID,
		},
		RunID:   runID,
		Approve: approve,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.RunID == "" {
		return nil, ErrInvalidToken
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// tokenHash digests a token for the used-token set; raw tokens are never
// retained.
func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
