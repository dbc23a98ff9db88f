package engine

import "github.com/roach88/bitshub/internal/domain"

// login resolves the admin pair first, then a registered user by email.
// Registered users store no credential, so their password is not checked.
func (r *reducer) login(a Login) error {
	if a.Email == r.policy.AdminEmail && a.Password == r.policy.AdminPassword {
		r.s.Admin = &domain.User{
			ID:        AdminID,
			FullName:  "Admin User",
			Email:     a.Email,
			IsAdmin:   true,
			Addresses: []domain.Address{},
			CreatedAt: r.now,
		}
		r.s.SessionID = AdminID
		return nil
	}

	u := r.s.userByEmail(a.Email)
	if u == nil {
		return reject(CodeAccountNotFound, "Account not found. Please sign up first.")
	}
	r.s.Admin = nil
	r.s.SessionID = u.ID
	return nil
}

// register creates a non-admin user, makes it the session, and asks the
// caller to present the login form.
func (r *reducer) register(a Register) error {
	if a.Password != a.ConfirmPassword {
		return reject(CodePasswordMismatch, "Passwords do not match")
	}
	for _, id := range r.s.UserOrder {
		if r.s.Users[id].Email == a.Email {
			return reject(CodeEmailExists, "Account with this email already exists. Please login.")
		}
	}

	u := &domain.User{
		ID:        r.ids.NewID(),
		FullName:  a.FullName,
		Email:     a.Email,
		IsAdmin:   false,
		Addresses: []domain.Address{},
		CreatedAt: r.now,
	}
	r.s.addUser(u)
	r.s.Admin = nil
	r.s.SessionID = u.ID

	r.out.CreatedID = u.ID
	r.out.Redirect = RedirectLogin
	return nil
}

// logout ends the session. The cart belongs to the session, not the account.
func (r *reducer) logout() error {
	r.s.SessionID = ""
	r.s.Admin = nil
	r.s.Cart = []domain.CartItem{}
	return nil
}

// restoreUsers replaces the registry. Admin entries are dropped and missing
// address lists are normalized to empty.
func (r *reducer) restoreUsers(a RestoreUsers) error {
	r.s.Users = make(map[string]*domain.User, len(a.Users))
	r.s.UserOrder = make([]string, 0, len(a.Users))
	for i := range a.Users {
		if a.Users[i].IsAdmin || a.Users[i].ID == "" {
			continue
		}
		r.s.addUser(a.Users[i].Clone())
	}
	if r.s.Admin == nil && r.s.SessionID != "" {
		if _, ok := r.s.Users[r.s.SessionID]; !ok {
			r.s.SessionID = ""
		}
	}
	return nil
}

// restoreSession resumes a persisted session. A registered user's registry
// record wins over the persisted copy; a user missing from the registry is
// added to it.
func (r *reducer) restoreSession(a RestoreSession) error {
	u := a.User.Clone()
	if u.ID == "" {
		return nil
	}
	if u.IsAdmin {
		r.s.Admin = u
		r.s.SessionID = u.ID
		return nil
	}
	if _, ok := r.s.Users[u.ID]; !ok {
		r.s.addUser(u)
	}
	r.s.Admin = nil
	r.s.SessionID = u.ID
	return nil
}
