package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franckalain/fitplan/internal/database"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Accounts stores users under the "accounts" collection. Emails are
// matched case-insensitively after trimming.
type Accounts struct {
	db   database.DB
	cost int
}

// NewAccounts returns an account store hashing passwords with the given
// bcrypt cost; cost <= 0 selects bcrypt.DefaultCost.
func NewAccounts(db database.DB, cost int) *Accounts {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{db: db, cost: cost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a fresh id and a bcrypt password hash.
func (a *Accounts) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return models.User{}, unavailable("generate id", err)
	}

	user := models.User{
		ID:           id.String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	err = modify(ctx, a.db, AccountsKey, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if normalizeEmail(u.Email) == email {
				return nil, ErrDuplicateEmail
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login returns the user whose email and password both match.
func (a *Accounts) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := a.byEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Accounts) Get(ctx context.Context, id string) (models.User, error) {
	users, err := load[models.User](ctx, a.db, AccountsKey)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (a *Accounts) List(ctx context.Context) ([]models.User, error) {
	return load[models.User](ctx, a.db, AccountsKey)
}

// SetRole changes the role of the account registered under email.
func (a *Accounts) SetRole(ctx context.Context, email string, role models.Role) error {
	email = normalizeEmail(email)
	return modify(ctx, a.db, AccountsKey, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if normalizeEmail(users[i].Email) == email {
				users[i].Role = role
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
}

func (a *Accounts) byEmail(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	users, err := load[models.User](ctx, a.db, AccountsKey)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}
