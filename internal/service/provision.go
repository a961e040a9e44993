package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alphalabs/mobile-api/internal/crypto"
	"github.com/alphalabs/mobile-api/internal/model"
	"github.com/alphalabs/mobile-api/internal/repository"
)

// ClientStore is the tenant persistence the provisioner depends on.
type ClientStore interface {
	GetByID(ctx context.Context, id int64) (*model.Client, error)
	CreateWithID(ctx context.Context, client *model.Client) error
}

// Provisioner creates the records the service needs before serving traffic.
type Provisioner struct {
	clients ClientStore
	users   UserStore
	hasher  *crypto.PasswordHasher
}

// NewProvisioner creates a new Provisioner.
func NewProvisioner(clients ClientStore, users UserStore, hasher *crypto.PasswordHasher) *Provisioner {
	return &Provisioner{clients: clients, users: users, hasher: hasher}
}

// EnsureDefaultClient makes sure the default client exists. It is safe to
// call repeatedly and from concurrent processes.
func (p *Provisioner) EnsureDefaultClient(ctx context.Context) (*model.Client, error) {
	client, err := p.clients.GetByID(ctx, model.DefaultClientID)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrClientNotFound) {
		return nil, err
	}

	client = &model.Client{
		ID:          model.DefaultClientID,
		Name:        model.DefaultClientName,
		Description: model.DefaultClientDescription,
		IsActive:    true,
	}
	if err := p.clients.CreateWithID(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicateClient) {
			return p.clients.GetByID(ctx, model.DefaultClientID)
		}
		return nil, err
	}

	slog.Info("default client created", "client_id", client.ID, "name", client.Name)
	return client, nil
}

// SeedTestUser creates a verified user with the given credentials unless the
// email is already registered. It reports whether a user was created.
func (p *Provisioner) SeedTestUser(ctx context.Context, identity TestIdentity) (*model.User, bool, error) {
	if identity.Email == "" {
		return nil, false, ErrEmailRequired
	}
	if identity.Password == "" {
		return nil, false, ErrPasswordRequired
	}

	existing, err := p.users.GetByEmail(ctx, identity.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := p.hasher.Hash(identity.Password)
	if err != nil {
		return nil, false, err
	}

	user := &model.User{
		Email:        identity.Email,
		Name:         identity.Name,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			existing, err := p.users.GetByEmail(ctx, identity.Email)
			return existing, false, err
		}
		return nil, false, err
	}

	return user, true, nil
}
