package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/validate"
)

// Built-in demo admin account accepted when the bypass is enabled. It lives
// outside the user directory.
const (
	AdminUserID   = "admin-user"
	AdminUsername = "Admin"
	AdminEmail    = "admin@example.com"
	adminSecret   = "Adminlogin@123"
)

func adminUser() PublicUser {
	return PublicUser{ID: AdminUserID, Username: AdminUsername, Email: AdminEmail}
}

// Signup creates a user directory entry and starts a session for it.
func (s *Store) Signup(ctx context.Context, in SignupInput) (_ *PublicUser, err error) {
	defer func(started time.Time) { s.track("signup", started, err) }(time.Now())

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(in.Email, "") {
		s.notify(ctx, "Signup Failed", "An account with this email already exists.", enums.NoticeVariantDestructive)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := User{
		ID:           s.ids.NewID(PrefixUser),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	s.users = append(s.users, user)
	public := user.Public()
	s.session = &public

	ctx = s.logg.WithUserID(ctx, user.ID)
	s.persist(ctx, KeyUsers, KeyCurrentUser)
	s.logg.Info(ctx, "user signed up")
	s.notify(ctx, "Signup Successful", fmt.Sprintf("Welcome to EcoFinds, %s!", user.Username), enums.NoticeVariantDefault)

	out := public
	return &out, nil
}

// Login starts a session for the matching directory entry or the admin bypass.
func (s *Store) Login(ctx context.Context, in LoginInput) (_ *PublicUser, err error) {
	defer func(started time.Time) { s.track("login", started, err) }(time.Now())

	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adminBypass && in.Email == AdminEmail && in.Password == adminSecret {
		admin := adminUser()
		s.session = &admin
		ctx = s.logg.WithUserID(ctx, admin.ID)
		s.persist(ctx, KeyCurrentUser)
		s.logg.Warn(ctx, "admin bypass login accepted")
		s.notify(ctx, "Admin Login Successful", "Welcome, Admin!", enums.NoticeVariantDefault)
		out := admin
		return &out, nil
	}

	user, ok := s.verifyCredentials(ctx, in)
	if !ok {
		s.notify(ctx, "Login Failed", "Invalid email or password.", enums.NoticeVariantDestructive)
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid credentials")
	}

	public := user.Public()
	s.session = &public
	ctx = s.logg.WithUserID(ctx, user.ID)
	s.persist(ctx, KeyCurrentUser)
	s.logg.Info(ctx, "user logged in")
	s.notify(ctx, "Login Successful", fmt.Sprintf("Welcome back, %s!", user.Username), enums.NoticeVariantDefault)

	out := public
	return &out, nil
}

func (s *Store) verifyCredentials(ctx context.Context, in LoginInput) (User, bool) {
	for _, user := range s.users {
		if user.Email != in.Email {
			continue
		}
		ok, err := s.verifier.Verify(in.Password, user.PasswordHash)
		if err != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID), "verify stored credential", err)
			return User{}, false
		}
		return user, ok
	}
	return User{}, false
}

// Logout clears the session and the cart. It is safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) {
	started := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.track("logout", started, nil)

	if s.session == nil && len(s.cart) == 0 {
		return
	}
	if s.session != nil {
		ctx = s.logg.WithUserID(ctx, s.session.ID)
	}
	s.session = nil
	s.cart = nil
	s.persist(ctx, KeyCurrentUser, KeyCart)
	s.logg.Info(ctx, "user logged out")
}

// UpdateProfile merges patch into the session user and its directory entry.
func (s *Store) UpdateProfile(ctx context.Context, patch ProfilePatch) (_ *PublicUser, err error) {
	defer func(started time.Time) { s.track("update_profile", started, err) }(time.Now())

	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		patch.Username = &trimmed
	}
	if patch.Email != nil {
		normalized := normalizeEmail(*patch.Email)
		patch.Email = &normalized
	}
	if err := validate.Struct(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != current.Email && s.emailTaken(*patch.Email, current.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
	}

	updated := *current
	if patch.Username != nil {
		updated.Username = *patch.Username
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	s.session = &updated
	for i := range s.users {
		if s.users[i].ID == updated.ID {
			s.users[i].Username = updated.Username
			s.users[i].Email = updated.Email
		}
	}

	ctx = s.logg.WithUserID(ctx, updated.ID)
	s.persist(ctx, KeyUsers, KeyCurrentUser)
	s.logg.Info(ctx, "profile updated")
	s.notify(ctx, "Profile Updated", "Your profile information has been saved.", enums.NoticeVariantDefault)

	out := updated
	return &out, nil
}

// CurrentUser returns the session user, or nil when anonymous.
func (s *Store) CurrentUser() *PublicUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePublicUser(s.session)
}

// GetUserByID resolves a directory entry, or the admin account while the
// bypass is enabled.
func (s *Store) GetUserByID(id string) (*PublicUser, bool) {
	if id == AdminUserID && s.adminBypass {
		admin := adminUser()
		return &admin, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			public := user.Public()
			return &public, true
		}
	}
	return nil, false
}

// emailTaken reports whether email belongs to a user other than exceptID. The
// admin address is reserved while the bypass is enabled.
func (s *Store) emailTaken(email, exceptID string) bool {
	if s.adminBypass && email == AdminEmail && exceptID != AdminUserID {
		return true
	}
	for _, user := range s.users {
		if user.Email == email && user.ID != exceptID {
			return true
		}
	}
	return false
}
