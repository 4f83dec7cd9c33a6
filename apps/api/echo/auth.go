package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ecurie/core/training"
)

const (
	contextTokenKey = "actorToken"
	tokenAudience   = "Ecurie"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role,omitempty"`
}

// Actor returns the training actor the claims were issued for.
func (c Claims) Actor() training.Actor {
	return training.Actor{ID: c.Subject, Role: c.Role}
}

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func GetActorClaims(actor training.Actor, issuer string, expiration time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   actor.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: actor.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the actor Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextActor(ctx echo.Context) (training.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return training.Actor{}, err
	}
	return claims.Actor(), nil
}
