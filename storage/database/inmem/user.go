package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/Ma114119/Combits-2025/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...int) error {
	defer repo.db.lock()()

	excluded := make(map[int]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Email, email) && !excluded[usr.ID] {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	defer repo.db.lock()()

	for _, existing := range repo.db.users {
		if strings.EqualFold(existing.Email, usr.Email) {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.userSeq++
	usr.ID = repo.db.userSeq
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	defer repo.db.lock()()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (repo userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	defer repo.db.lock()()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	defer repo.db.lock()()

	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) UpdateUser(_ context.Context, id int, uu user.UpdateUser) (user.User, error) {
	defer repo.db.lock()()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if uu.Name.Valid {
		usr.Name = uu.Name.String
	}
	if uu.University.Valid {
		usr.University = uu.University
	}
	if uu.Semester.Valid {
		usr.Semester = uu.Semester
	}
	if uu.ProfilePictureURL.Valid {
		usr.ProfilePictureURL = uu.ProfilePictureURL
	}
	repo.db.users[id] = usr
	return usr, nil
}

func (repo userRepository) SetPassword(_ context.Context, id int, hash []byte) error {
	defer repo.db.lock()()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	repo.db.users[id] = usr
	return nil
}

func (repo userRepository) DeleteUser(_ context.Context, id int) error {
	defer repo.db.lock()()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}
