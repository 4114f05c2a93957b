package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-gin-social-graph/internal/domain"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

type Claims struct {
	UserID uint        `json:"userId"`
	Role   domain.Role `json:"role"`
	RoleID uint        `json:"role_id"`
	jwt.RegisteredClaims
}

// JWTer issues and verifies HS256 access tokens. It is built once at startup
// and shared read-only by all requests.
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(userID uint, role domain.Role, roleID uint) (string, error) {
	if len(j.Secret) == 0 {
		return "", errors.New("jwt: empty secret")
	}
	now := j.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Verify checks signature, issuer and expiry. Only ErrTokenExpired and
// ErrTokenMalformed are returned; parser details stay inside.
func (j *JWTer) Verify(tokenStr string) (*Principal, error) {
	var c Claims
	t, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !t.Valid || c.UserID == 0 || !c.Role.Valid() || c.Role.ID() != c.RoleID {
		return nil, ErrTokenMalformed
	}
	return &Principal{
		UserID:    c.UserID,
		Role:      c.Role,
		RoleID:    c.RoleID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
