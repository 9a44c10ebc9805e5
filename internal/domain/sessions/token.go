package sessions

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims viaja dentro del JWT: Subject es la cuenta, ID (jti) la sesión.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService firma y valida los JWT de sesión (HS256).
type TokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, expiry time.Duration) *TokenService {
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (t *TokenService) Issue(sessionID, accountID, email string) (string, time.Time, error) {
	now := t.now().UTC()
	expiresAt := now.Add(t.expiry)

	claims := TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   accountID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (t *TokenService) Parse(tokenStr string) (TokenClaims, error) {
	var claims TokenClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}
