package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-bank-session/internal/errors"
	"github.com/jrsteele09/go-bank-session/ledger"
	"github.com/jrsteele09/go-bank-session/server/bookrepo"
	"github.com/jrsteele09/go-bank-session/users"
)

const detailCustomerNotAssigned = "Customer not found or not assigned to you."

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
			return
		}
		writeJSON(w, http.StatusOK, principalView(user))
	}
}

// ListUsersHandler lists users with role, newest first. ownedOnly limits the
// list to users created by the caller.
func (s *Server) ListUsersHandler(role users.Role, ownedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, _ := userFromContext(r.Context())
		filter := users.ListFilter{Role: role}
		if ownedOnly {
			filter.CreatedBy = &current.ID
		}
		list, err := s.repos.Users.List(filter)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
		views := make([]users.Principal, 0, len(list))
		for _, u := range list {
			views = append(views, principalView(u))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// CreateUserHandler creates a user with the given role, owned by the caller.
// New customers get a zero-balance savings account.
func (s *Server) CreateUserHandler(role users.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, _ := userFromContext(r.Context())

		var req ledger.NewUser
		if !decodeBody(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)

		fe := fieldErrors{}
		fe.required("username", req.Username)
		fe.required("password", req.Password)
		if req.Password != "" {
			if err := users.ValidatePassword(req.Password); err != nil {
				fe.add("password", err.Error())
			}
		}
		if fe.write(w) {
			return
		}

		user, err := s.createUser(req, role, current.ID)
		if errors.Is(err, errors.ErrAlreadyExists) {
			writeJSON(w, http.StatusBadRequest, fieldErrors{"username": {"A user with that username already exists."}})
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create user")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			return
		}

		if role == users.RoleCustomer {
			if err := s.repos.Book.AddAccount(&bookrepo.AccountRecord{
				OwnerID:       user.ID,
				AccountNumber: newAccountNumber(),
				AccountType:   ledger.AccountSavings,
				IsActive:      true,
				CreatedAt:     NowTimeFunc(),
			}); err != nil {
				s.logger.Error().Err(err).Msg("failed to open savings account")
				writeDetail(w, http.StatusInternalServerError, "Internal server error.")
				return
			}
		}

		s.logger.Info().Str("username", user.Username).Str("role", string(role)).Int64("created_by", current.ID).Msg("user created")
		writeJSON(w, http.StatusCreated, principalView(user))
	}
}

func (s *Server) CustomerAccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, _ := userFromContext(r.Context())

		customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		customer, err := s.repos.Users.GetByID(customerID)
		if err != nil || customer.Role != users.RoleCustomer || !customer.IsOwnedBy(current.ID) {
			writeDetail(w, http.StatusNotFound, detailCustomerNotAssigned)
			return
		}
		s.writeAccounts(w, []int64{customer.ID})
	}
}

func (s *Server) createUser(req ledger.NewUser, role users.Role, createdBy int64) (*users.User, error) {
	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		Principal: users.Principal{
			Username:   req.Username,
			Email:      req.Email,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Role:       role,
			Phone:      req.Phone,
			Address:    req.Address,
			IsActive:   true,
			DateJoined: NowTimeFunc(),
			CreatedBy:  &createdBy,
		},
		PasswordHash: hash,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

// principalView fills the derived full name the way the ledger serializes it.
func principalView(u *users.User) users.Principal {
	p := u.Principal
	if p.FullName == "" {
		p.FullName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if p.FullName == "" {
		p.FullName = p.Username
	}
	return p
}

func newAccountNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SB" + strings.ToUpper(hex[:10])
}

func newReferenceID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN" + strings.ToUpper(hex[:12])
}
