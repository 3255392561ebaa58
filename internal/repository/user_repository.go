package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// UserRepo persists user records and their role assignments.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Add hashes the password with bcrypt at the given cost, inserts the
// user row and one role row per assignment.  Users without an explicit
// role become diners.  The returned user carries the generated id and
// no password material.
func (r *UserRepo) Add(ctx context.Context, name, email, password string, roles []model.RoleAssignment, cost int) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		name, email, string(hash))
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		roles = []model.RoleAssignment{{Role: model.RoleDiner}}
	}
	for _, role := range roles {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,?)",
			id, role.Role, role.ObjectID); err != nil {
			return nil, err
		}
	}

	return &model.User{ID: uint64(id), Name: name, Email: email, Roles: roles}, nil
}

// Authenticate fetches the user by email and compares the submitted
// password against the stored bcrypt hash.  Unknown email and wrong
// password both yield ErrInvalidCredentials.  The hash is stripped from
// the returned user.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	u.PasswordHash = ""

	if u.Roles, err = r.rolesFor(ctx, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user and its roles without password material.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, email FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return nil, err
	}
	if u.Roles, err = r.rolesFor(ctx, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes the fields that were submitted non-empty.  An empty
// string means "leave unchanged"; when nothing changed, no UPDATE is
// issued at all.  Either way the current user view is re-fetched and
// returned.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, email, password string, cost int) (*model.User, error) {
	var (
		sets []string
		args []any
	)
	if name != "" {
		sets = append(sets, "name=?")
		args = append(args, name)
	}
	if email != "" {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(email)))
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "password_hash=?")
		args = append(args, string(hash))
	}

	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			if isDuplicate(err) {
				return nil, ErrEmailExists
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// List returns one page of users filtered by name, with roles attached
// per user.  One extra row is fetched to detect whether more pages
// exist without a count query.
func (r *UserRepo) List(ctx context.Context, page, pageSize int, nameFilter string) ([]*model.User, bool, error) {
	filter := likePattern(nameFilter)
	offset := (page - 1) * pageSize

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, email FROM users WHERE name LIKE ? ORDER BY id LIMIT ? OFFSET ?",
		filter, pageSize+1, offset)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u := new(model.User)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, false, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	more := len(out) > pageSize
	if more {
		out = out[:pageSize]
	}
	for _, u := range out {
		if u.Roles, err = r.rolesFor(ctx, u.ID); err != nil {
			return nil, false, err
		}
	}
	return out, more, nil
}

// rolesFor resolves a user's role assignment rows.
func (r *UserRepo) rolesFor(ctx context.Context, userID uint64) ([]model.RoleAssignment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role, object_id FROM user_roles WHERE user_id=? ORDER BY role, object_id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.RoleAssignment
	for rows.Next() {
		var a model.RoleAssignment
		if err := rows.Scan(&a.Role, &a.ObjectID); err != nil {
			return nil, err
		}
		roles = append(roles, a)
	}
	return roles, rows.Err()
}

// likePattern turns a user-supplied filter into a SQL LIKE pattern.
// "*" acts as the wildcard; an empty filter matches everything.
func likePattern(filter string) string {
	if filter == "" {
		return "%"
	}
	return strings.ReplaceAll(filter, "*", "%")
}

// isDuplicate detects a unique-constraint violation.  MySQL reports
// error 1062; the sqlite driver used in tests says "UNIQUE".
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique")
}
