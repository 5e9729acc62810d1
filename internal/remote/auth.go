package remote

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/han8909227/avatax-go/internal/model"
)

// AuthMode is how requests are authenticated.
type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthBasic  AuthMode = "basic"
	AuthBearer AuthMode = "bearer"
)

// Credentials holds either a username/password pair or a bearer token.
type Credentials struct {
	mode     AuthMode
	username string
	password string
}

// NewCredentials builds credentials. A username without a password is a bearer token.
func NewCredentials(username, password string) (Credentials, error) {
	if username == "" {
		return Credentials{}, model.NewArgumentError("username", nil,
			"must be a bearer token on its own or a username with a password")
	}
	if err := checkHeaderText("username", username); err != nil {
		return Credentials{}, err
	}
	if err := checkHeaderText("password", password); err != nil {
		return Credentials{}, model.NewArgumentError("password", nil, "must be plain text without control characters")
	}

	if password == "" {
		return Credentials{mode: AuthBearer, username: username}, nil
	}
	return Credentials{mode: AuthBasic, username: username, password: password}, nil
}

// Mode returns the authentication mode.
func (c Credentials) Mode() AuthMode {
	if c.mode == "" {
		return AuthNone
	}
	return c.mode
}

// Username returns the basic-auth user name, or "" in other modes.
func (c Credentials) Username() string {
	if c.mode != AuthBasic {
		return ""
	}
	return c.username
}

// BearerExpiry reads the exp claim when the bearer token is a JWT. The signature is
// not checked; the service does that.
func (c Credentials) BearerExpiry() (time.Time, bool) {
	if c.mode != AuthBearer {
		return time.Time{}, false
	}
	token, _, err := jwt.NewParser().ParseUnverified(c.username, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// transport wraps base so bearer requests carry the token.
func (c Credentials) transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if c.mode != AuthBearer {
		return base
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.username, TokenType: "Bearer"}),
		Base:   base,
	}
}

func (c Credentials) apply(req *http.Request) {
	if c.mode == AuthBasic {
		req.SetBasicAuth(c.username, c.password)
	}
}
