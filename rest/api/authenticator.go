package api

import (
	"errors"

	"github.com/alpacahq/gopaca/env"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	jwtmiddleware "github.com/iris-contrib/middleware/jwt"
	"github.com/kataras/iris"

	"github.com/capclear/tenderbroker/tberrors"
)

type Authenticator interface {
	Authenticate(Context) error
	AuthenticateAdmin(Context) error
}

type authenticator struct {
	Authenticator
}

func NewAuthenticator() Authenticator {
	return &authenticator{}
}

// Authenticate validates an investor bearer token signed with the broker
// secret, and authorizes the session for that investor's resources.
func (a *authenticator) Authenticate(ctx Context) error {
	investorID, err := verifyToken(ctx, env.GetVar("BROKER_SECRET"))
	if err != nil {
		return err
	}

	ctx.Authorize(investorID, PermissionInvestor)

	// assign investor_id for tracking purposes
	ctx.Values().Set("investor_id", investorID.String())

	return nil
}

// AuthenticateAdmin validates an admin bearer token signed with the
// admin secret. Settlement and preview endpoints require it.
func (a *authenticator) AuthenticateAdmin(ctx Context) error {
	adminID, err := verifyToken(ctx, env.GetVar("ADMIN_SECRET"))
	if err != nil {
		return tberrors.Unauthorized.WithMsg(err.Error())
	}

	ctx.Authorize(adminID, PermissionAdmin)

	ctx.Values().Set("admin_id", adminID.String())

	return nil
}

func verifyToken(ctx iris.Context, secret string) (uuid.UUID, error) {
	token, err := extractToken(ctx, secret)
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("token invalid")
	}

	sub, ok := claims["sub"].(map[string]interface{})
	if !ok {
		return uuid.Nil, errors.New("token invalid")
	}

	id, err := uuid.FromString(sub["id"].(string))
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func extractToken(ctx iris.Context, secret string) (*jwt.Token, error) {
	tokenString, err := jwtMiddleware.Config.Extractor(ctx)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	return token, nil
}

var jwtMiddleware = jwtmiddleware.New(jwtmiddleware.Config{
	ValidationKeyGetter: func(token *jwt.Token) (interface{}, error) {
		return []byte(env.GetVar("BROKER_SECRET")), nil
	},
	SigningMethod: jwt.SigningMethodHS256,
	ErrorHandler: func(ctx iris.Context, err string) {
		ctx.StatusCode(iris.StatusUnauthorized)
	},
})
