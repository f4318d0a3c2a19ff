// Package admins manages administrator accounts and their logins.
package admins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"barber-reservation-api/internal/auth"
	"barber-reservation-api/internal/model"
	"barber-reservation-api/internal/store"
)

const MinPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNotFound           = errors.New("admin not found")
	ErrDeleteSelf         = errors.New("cannot delete your own account")
)

// FieldErrors maps an input field to what is wrong with it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + f[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

type Service struct {
	repo   store.Admins
	tokens *auth.Issuer
	log    *slog.Logger
}

func New(repo store.Admins, tokens *auth.Issuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, log: log}
}

func checkUsername(fe FieldErrors, username string) {
	if strings.TrimSpace(username) == "" {
		fe["username"] = "must not be blank"
	}
}

func checkPassword(fe FieldErrors, pw string) {
	if len(pw) < MinPasswordLen {
		fe["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLen)
	}
}

func (s *Service) Create(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	fe := FieldErrors{}
	checkUsername(fe, username)
	checkPassword(fe, password)
	if len(fe) > 0 {
		return nil, fe
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &model.Admin{Username: username, PasswordHash: hash}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "admin created", "admin_id", a.ID, "username", a.Username)
	return a, nil
}

// dummyHash keeps unknown-user logins as slow as wrong-password ones.
var dummyHash, _ = auth.HashPassword("not-a-real-password")

// Login checks the credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *model.Admin, error) {
	a, err := s.repo.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckPassword(dummyHash, password)
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		s.log.WarnContext(ctx, "login failed", "username", a.Username)
		return "", nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.MakeToken(a.ID, a.Username)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, a, nil
}

func (s *Service) List(ctx context.Context) ([]model.Admin, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Admin, error) {
	a, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// Exists reports whether admin id is still on record. Bearer tokens are
// honoured only while it is.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Update changes the username, the password, or both. Empty fields are left
// as they are.
func (s *Service) Update(ctx context.Context, id int64, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	fe := FieldErrors{}
	if username == "" && password == "" {
		fe["username"] = "nothing to update"
	}
	if password != "" {
		checkPassword(fe, password)
	}
	if len(fe) > 0 {
		return nil, fe
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if username != "" {
		a.Username = username
	}
	if password != "" {
		if a.PasswordHash, err = auth.HashPassword(password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "admin updated", "admin_id", a.ID)
	return a, nil
}

func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	fe := FieldErrors{}
	checkPassword(fe, password)
	if len(fe) > 0 {
		return fe
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.PasswordHash, err = auth.HashPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.save(ctx, a); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "admin password reset", "admin_id", a.ID)
	return nil
}

func (s *Service) save(ctx context.Context, a *model.Admin) error {
	err := s.repo.Update(ctx, a)
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	}
	return err
}

// Delete removes admin id on behalf of actor.
func (s *Service) Delete(ctx context.Context, actor, id int64) error {
	if actor == id {
		return ErrDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.InfoContext(ctx, "admin deleted", "admin_id", id, "by", actor)
	return nil
}

// Count reports how many admins exist; zero means the shop still needs
// bootstrapping.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
