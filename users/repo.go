package users

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Role      Role
	CreatedBy *int64
}

type UserRepo interface {
	Upsert(user *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	List(filter ListFilter) ([]*User, error)
}
