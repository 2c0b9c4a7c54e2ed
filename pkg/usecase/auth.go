package usecase

import (
	"context"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer = "ascent"
	claimRole   = "role"
	claimName   = "name"
)

// Auth issues and verifies access tokens for console users
type Auth struct {
	repo   interfaces.Repository
	secret []byte
	config
}

// NewAuth creates a new Auth use case. secret is the HS256 signing key.
func NewAuth(repo interfaces.Repository, secret []byte, opts ...Option) *Auth {
	return &Auth{
		repo:   repo,
		secret: secret,
		config: newConfig(opts),
	}
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", goerr.New("password is required", goerr.T(model.TagValidation))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", goerr.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login verifies the credentials and returns a signed access token
func (a *Auth) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	logger := ctxlog.From(ctx)

	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if model.IsNotFound(err) {
			return "", nil, goerr.Wrap(model.ErrInvalidCredentials, "unknown email", goerr.V("email", email))
		}
		return "", nil, goerr.Wrap(err, "failed to get user", goerr.V("email", email))
	}
	if !verifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed", "userID", user.ID)
		return "", nil, goerr.Wrap(model.ErrInvalidCredentials, "password mismatch", goerr.V("user_id", user.ID))
	}
	if !user.IsActive() {
		return "", nil, goerr.Wrap(model.ErrUserInactive, "inactive user tried to sign in", goerr.V("user_id", user.ID))
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	logger.Info("User signed in",
		"userID", user.ID,
		"role", user.Role,
	)
	return token, user, nil
}

// IssueToken signs an access token for user
func (a *Auth) IssueToken(user *model.User) (string, error) {
	now := a.now()
	tok, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(user.ID.String()).
		IssuedAt(now).
		Expiration(now.Add(a.tokenTTL)).
		Claim(claimRole, user.Role.String()).
		Claim(claimName, user.Name).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

// ValidateToken verifies the token and resolves the caller. Tokens of users
// deactivated after issue are rejected.
func (a *Auth) ValidateToken(ctx context.Context, token string) (*model.AuthContext, error) {
	if strings.TrimSpace(token) == "" {
		return nil, goerr.Wrap(model.ErrInvalidToken, "token is empty")
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, a.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(a.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(model.ErrInvalidToken, "failed to verify token", goerr.V("cause", err.Error()))
	}

	userID := types.UserID(tok.Subject())
	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, goerr.Wrap(model.ErrInvalidToken, "token subject does not exist", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get token subject", goerr.V("user_id", userID))
	}
	if !user.IsActive() {
		return nil, goerr.Wrap(model.ErrUserInactive, "token subject is inactive", goerr.V("user_id", userID))
	}

	return &model.AuthContext{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	}, nil
}

// EnsureAdmin creates an ADMIN account for email unless a user with that
// e-mail already exists. It returns true when an account was created.
func (a *Auth) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if _, err := a.repo.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !model.IsNotFound(err) {
		return false, goerr.Wrap(err, "failed to look up admin", goerr.V("email", email))
	}

	if name == "" {
		name = "Administrator"
	}
	user, err := model.NewUser("ADMIN", name, email, types.UserRoleAdmin, "", a.now())
	if err != nil {
		return false, goerr.Wrap(err, "invalid admin account")
	}
	if user.PasswordHash, err = HashPassword(password); err != nil {
		return false, err
	}
	if err := a.repo.PutUser(ctx, user); err != nil {
		return false, goerr.Wrap(err, "failed to save admin", goerr.V("email", email))
	}

	ctxlog.From(ctx).Info("Bootstrapped admin account", "userID", user.ID, "email", user.Email)
	return true, nil
}
