package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videotube/backend/internal/models"
)

// AccessClaims is the payload of the short-lived access token. The subject
// carries the account identifier.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of the long-lived refresh token. It carries
// nothing beyond the account identifier.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the two bearer-token kinds. Access and
// refresh tokens use separate secrets so a leaked refresh secret cannot mint
// access tokens and vice versa.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenIssuer constructs an issuer from the two secrets and their TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IssueAccess signs a short-lived access token for the user.
func (i *TokenIssuer) IssueAccess(user models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.accessTTL)
	claims := AccessClaims{
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefresh signs a long-lived refresh token for the user.
func (i *TokenIssuer) IssueRefresh(user models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssuePair issues both tokens from a single account context so they always
// describe the same user.
func (i *TokenIssuer) IssuePair(user models.User) (models.SessionTokens, error) {
	access, accessExp, err := i.IssueAccess(user)
	if err != nil {
		return models.SessionTokens{}, err
	}
	refresh, refreshExp, err := i.IssueRefresh(user)
	if err != nil {
		return models.SessionTokens{}, err
	}
	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token and returns its claims. Expired,
// malformed, and wrong-signature tokens all yield ErrInvalidToken.
func (i *TokenIssuer) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.verify(token, claims, i.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *TokenIssuer) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.verify(token, claims, i.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *TokenIssuer) verify(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return ErrInvalidToken
	}
	return nil
}
