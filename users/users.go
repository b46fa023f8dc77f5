package users

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Role is the single role a ledger user holds.
type Role string

const (
	RoleSuperAdmin Role = "superadmin" // Manages relationship managers and sees every customer
	RoleRM         Role = "rm"         // Relationship manager, owns a book of customers
	RoleCustomer   Role = "customer"   // Holds accounts, transacts, raises service requests
)

// Roles lists the known roles in a stable order.
var Roles = []Role{RoleSuperAdmin, RoleRM, RoleCustomer}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleRM, RoleCustomer:
		return true
	}
	return false
}

// Display returns the human readable role name. Unknown roles are returned verbatim.
func (r Role) Display() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleRM:
		return "Relationship Manager"
	case RoleCustomer:
		return "Customer"
	}
	return string(r)
}

// Principal is the identity returned by the ledger's /me/ endpoint and cached
// alongside the credential pair.
type Principal struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	Role       Role      `json:"role"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined,omitzero"`
	CreatedBy  *int64    `json:"created_by"`
}

// DisplayName prefers the full name and falls back to the username.
func (p *Principal) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	return p.Username
}

// Initials returns the first letters of the first and last name, or "?" when neither is set.
func (p *Principal) Initials() string {
	initials := firstRune(p.FirstName) + firstRune(p.LastName)
	if initials == "" {
		return "?"
	}
	return initials
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// User is the server-side record kept by the development ledger.
type User struct {
	Principal
	PasswordHash string `json:"-"` // never serialize
}

// MinPasswordLength matches the ledger's create-user validation.
const MinPasswordLength = 4

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("Ensure this field has at least %d characters.", MinPasswordLength)
	}
	return nil
}

// HashCost is the bcrypt cost used by HashPassword. Tests lower it.
var HashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// IsOwnedBy reports whether the user was created by the given user id.
func (u *User) IsOwnedBy(id int64) bool {
	return u.CreatedBy != nil && *u.CreatedBy == id
}
