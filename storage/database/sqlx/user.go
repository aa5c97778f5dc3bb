package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/user"
)

const userColumns = `user_id, name, email, university, semester, profile_picture_url, password_hash, created_at`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...int) error {
	query := `SELECT COUNT(*) FROM users WHERE email = $1`
	args := []interface{}{email}

	if len(excludedIDs) > 0 {
		var err error
		query, args, err = sqlx.In(`SELECT COUNT(*) FROM users WHERE email = ? AND user_id NOT IN (?)`, email, excludedIDs)
		if err != nil {
			return errors.Wrap(err, "expanding query")
		}
		query = repo.db.Rebind(query)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, university, semester, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING user_id`,
		usr.Name, usr.Email, usr.PasswordHash, usr.University, usr.Semester, usr.CreatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := repo.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	if err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user by email")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, id int, uu user.UpdateUser) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr,
		`UPDATE users
		 SET name = COALESCE($1, name),
		     university = COALESCE($2, university),
		     semester = COALESCE($3, semester),
		     profile_picture_url = COALESCE($4, profile_picture_url)
		 WHERE user_id = $5
		 RETURNING `+userColumns,
		uu.Name, uu.University, uu.Semester, uu.ProfilePictureURL, id,
	)
	if err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "updating user")
	}
	return usr, nil
}

func (repo userRepository) SetPassword(ctx context.Context, id int, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE user_id = $2`, hash, id)
	if err != nil {
		return errors.Wrap(err, "setting password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}
