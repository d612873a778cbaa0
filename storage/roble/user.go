package roble

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openlab-uninorte/aula/core/user"
)

const usersTable = "users"

// UserRepository stores application accounts in a Roble table.
type UserRepository struct {
	client *Client
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func decodeUser(rec Record) user.User {
	usr := user.User{
		ID:           rec.String(idColumn, "id"),
		Name:         rec.String("name", "Name"),
		Username:     rec.String("username"),
		Email:        rec.String("email", "Email"),
		IsActive:     rec.Bool("is_active"),
		Roles:        rec.StringSlice("roles"),
		PasswordHash: []byte(rec.String("password_hash")),
	}
	if t, ok := rec.Time("created_at"); ok {
		usr.CreatedAt = t
	}
	if t, ok := rec.Time("updated_at"); ok {
		usr.UpdatedAt = t
	}
	if t, ok := rec.Time("last_login"); ok {
		usr.LastLogin = t
	}
	return usr
}

func encodeUser(usr user.User) map[string]interface{} {
	rec := map[string]interface{}{
		"name":          usr.Name,
		"username":      usr.Username,
		"email":         usr.Email,
		"is_active":     usr.IsActive,
		"roles":         usr.Roles,
		"password_hash": string(usr.PasswordHash), // bcrypt hashes are ASCII
		"created_at":    usr.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":    usr.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !usr.LastLogin.IsZero() {
		rec["last_login"] = usr.LastLogin.UTC().Format(time.RFC3339)
	}
	return rec
}

func (repo *UserRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := func(usr user.User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}

	if username != "" {
		recs, err := repo.client.Read(ctx, usersTable, map[string]string{"username": username})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if !excluded(decodeUser(rec)) {
				return user.ErrUsernameExists
			}
		}
	}
	if email != "" {
		recs, err := repo.client.Read(ctx, usersTable, map[string]string{"email": email})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if !excluded(decodeUser(rec)) {
				return user.ErrEmailExists
			}
		}
	}
	return nil
}

func (repo *UserRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	rec := encodeUser(usr)
	rec[idColumn] = usr.ID
	if err := repo.client.Insert(ctx, usersTable, rec); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *UserRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	recs, err := repo.client.Read(ctx, usersTable, nil)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, decodeUser(rec))
	}
	return users, nil
}

func (repo *UserRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	recs, err := repo.client.Read(ctx, usersTable, map[string]string{idColumn: id})
	if err != nil {
		return user.User{}, err
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return decodeUser(recs[0]), nil
}

func (repo *UserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	recs, err := repo.client.Read(ctx, usersTable, map[string]string{"email": email})
	if err != nil {
		return user.User{}, err
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return decodeUser(recs[0]), nil
}

func (repo *UserRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	recs, err := repo.client.Read(ctx, usersTable, map[string]string{"username": username})
	if err != nil {
		return user.User{}, err
	}
	if len(recs) > 0 {
		return decodeUser(recs[0]), nil
	}
	return repo.GetUserByEmail(ctx, username)
}

func (repo *UserRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.client.Update(ctx, usersTable, usr.ID, encodeUser(usr)); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *UserRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := repo.client.Delete(ctx, usersTable, id); err != nil {
			return err
		}
	}
	return nil
}
