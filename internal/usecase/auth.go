package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
	pkgAuth "github.com/polkiloo/retailpos/internal/pkg/auth"
)

// AuthUseCase handles staff accounts and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a sales rep account and returns its auth token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	usr, err := u.create(ctx, login, password, model.RoleSalesRep)
	if err != nil {
		return nil, "", err
	}
	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// CreateUser lets an admin create an account with any role.
func (u *AuthUseCase) CreateUser(ctx context.Context, actor model.Actor, login, password string, role model.Role) (*model.User, error) {
	if !actor.Is(model.RoleAdmin) {
		return nil, domainErrors.ErrForbidden
	}
	if !role.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.create(ctx, login, password, role)
}

// EnsureUser creates the account unless the login is already taken.
// It seeds the bootstrap admin at startup.
func (u *AuthUseCase) EnsureUser(ctx context.Context, login, password string, role model.Role) (*model.User, bool, error) {
	if !role.Valid() {
		return nil, false, domainErrors.ErrInvalidInput
	}
	usr, err := u.create(ctx, login, password, role)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		existing, err := u.users.GetByLogin(ctx, strings.TrimSpace(login))
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return usr, true, nil
}

func (u *AuthUseCase) create(ctx context.Context, login, password string, role model.Role) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return u.users.Create(ctx, login, hash, role)
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	return u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: string(usr.Role)})
}

// ResolveActor turns a token into the caller identity. The account must still
// exist with the role the token was issued for.
func (u *AuthUseCase) ResolveActor(ctx context.Context, token string) (model.Actor, error) {
	if token == "" {
		return model.Actor{}, pkgAuth.ErrInvalidToken
	}
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.Actor{}, err
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Actor{}, pkgAuth.ErrInvalidToken
		}
		return model.Actor{}, err
	}
	if string(usr.Role) != claims.Role {
		return model.Actor{}, pkgAuth.ErrInvalidToken
	}

	return model.Actor{UserID: usr.ID, Role: usr.Role}, nil
}
