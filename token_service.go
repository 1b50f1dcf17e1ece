package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService signs and verifies the platform's claim-bearing tokens.
// Decode accepts any claims struct so callers owning their own claim shapes
// (e.g. the social registration token) can reuse the same key and policy.
type TokenService interface {
	SignClaims(claims jwt.Claims) (string, error)
	NewAccessToken(userID string) (string, error)
	NewRefreshToken(userID, tokenID string) (string, error)
	DecodeAccess(tokenString string) (*AccessClaims, error)
	DecodeRefresh(tokenString string) (*RefreshClaims, error)
	Decode(tokenString string, into jwt.Claims, subject string) error
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, issuer string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		issuer:     issuer,
		logger:     logger,
	}
}

// NewTokenServiceFromConfig resolves the signing key and issuer policy from
// startup configuration. A missing key is fatal outside development.
func NewTokenServiceFromConfig(cfg Config, logger Logger) (TokenService, error) {
	if cfg.GetSigningKey() == "" && !cfg.IsDevelopment() {
		return nil, ErrMissingSigningKey
	}
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), logger), nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims jwt.Claims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// NewAccessToken mints a 1h access token for the given user.
func (ts *TokenServiceImpl) NewAccessToken(userID string) (string, error) {
	return ts.SignClaims(&AccessClaims{
		RegisteredClaims: NewRegisteredClaims(ts.issuer, SubjectAccessToken, AccessTokenTTL),
		UserID:           userID,
	})
}

// NewRefreshToken mints a 30d refresh token bound to an AuthToken record.
func (ts *TokenServiceImpl) NewRefreshToken(userID, tokenID string) (string, error) {
	return ts.SignClaims(&RefreshClaims{
		RegisteredClaims: NewRegisteredClaims(ts.issuer, SubjectRefreshToken, RefreshTokenTTL),
		UserID:           userID,
		TokenID:          tokenID,
	})
}

// DecodeAccess verifies an access token and returns its claims.
func (ts *TokenServiceImpl) DecodeAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.decode(tokenString, claims, SubjectAccessToken); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeRefresh verifies a refresh token and returns its claims.
func (ts *TokenServiceImpl) DecodeRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.decode(tokenString, claims, SubjectRefreshToken); err != nil {
		return nil, err
	}
	return claims, nil
}

// Decode verifies a token signed by this service into a caller-supplied
// claims struct. The subject is enforced so a token minted for one purpose
// cannot be replayed as another.
func (ts *TokenServiceImpl) Decode(tokenString string, into jwt.Claims, subject string) error {
	return ts.decode(tokenString, into, subject)
}

func (ts *TokenServiceImpl) decode(tokenString string, into jwt.Claims, subject string) error {
	parserOptions := []jwt.ParserOption{
		jwt.WithIssuer(ts.issuer),
	}
	if subject != "" {
		parserOptions = append(parserOptions, jwt.WithSubject(subject))
	}

	token, err := jwt.ParseWithClaims(tokenString, into, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		ts.logger.Error("TokenService decode could not validate claims")
		return ErrUnableToDecodeSession
	}

	return nil
}
