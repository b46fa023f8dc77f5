package fakeuserrepo

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users     map[int64]*users.User
	usernames map[string]int64 // username to user id
	nextID    int64
	lock      sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:     make(map[int64]*users.User),
		usernames: make(map[string]int64),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.usernames[user.Username]; ok && id != user.ID {
		return errors.ErrAlreadyExists
	}
	if user.ID == 0 {
		ur.nextID++
		user.ID = ur.nextID
	} else if user.ID > ur.nextID {
		ur.nextID = user.ID
	}
	ur.users[user.ID] = user
	ur.usernames[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernames[username]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return ur.users[id], nil
}

// List returns matching users, most recently joined first.
func (ur *FakeUserRepo) List(filter users.ListFilter) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0)
	for _, u := range ur.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.CreatedBy != nil && !u.IsOwnedBy(*filter.CreatedBy) {
			continue
		}
		userList = append(userList, u)
	}

	sort.Slice(userList, func(i, j int) bool {
		if !userList[i].DateJoined.Equal(userList[j].DateJoined) {
			return userList[i].DateJoined.After(userList[j].DateJoined)
		}
		return userList[i].ID > userList[j].ID
	})
	return userList, nil
}
