// ABOUTME: Users screen store
// ABOUTME: Role and status filters, promote/demote with per-row pending state, admin-created accounts

package feature

import (
	"context"
	"strings"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
)

// User filter fields
const (
	UserSearch = "search"
	UserRole   = "role"
	UserStatus = "status"
)

// UserStatuses are the presence values the status filter accepts
var UserStatuses = []string{"online", "offline"}

// RoleAction is a role change applied to one user
type RoleAction string

const (
	Promote RoleAction = "promote"
	Demote  RoleAction = "demote"
)

// Users is the users screen
type Users struct {
	*Table[client.User]

	pmu     sync.Mutex
	pending map[int]bool
}

// NewUsers creates the users screen store
func NewUsers(d Deps) *Users {
	return &Users{
		Table: newTable(d, tableSpec[client.User]{
			key:      "users",
			text:     []string{UserSearch},
			selects:  []string{UserRole, UserStatus},
			sortKeys: []string{"name", "email", "role"},
			list: listing.Config[client.User]{
				Resource:    "users",
				FailMessage: "Failed to load users. Please try again.",
				Fetch:       d.API.FilterUsers,
				Report:      d.API.UsersReport,
			},
		}),
		pending: map[int]bool{},
	}
}

// Pending reports whether a role change for the user is in flight
func (u *Users) Pending(id int) bool {
	u.pmu.Lock()
	defer u.pmu.Unlock()
	return u.pending[id]
}

func (u *Users) claim(id int) bool {
	u.pmu.Lock()
	defer u.pmu.Unlock()
	if u.pending[id] {
		return false
	}
	u.pending[id] = true
	return true
}

func (u *Users) release(id int) {
	u.pmu.Lock()
	delete(u.pending, id)
	u.pmu.Unlock()
	u.deps.changed()
}

// ChangeRole promotes the user to admin or demotes them to user, patching
// the loaded row on success. A second change for the same user while one is
// pending is ignored.
func (u *Users) ChangeRole(ctx context.Context, id int, action RoleAction) error {
	if !u.claim(id) {
		return nil
	}
	defer u.release(id)
	u.deps.changed()

	call, role, done := u.deps.API.PromoteUser, client.RoleAdmin, "promoted"
	if action == Demote {
		call, role, done = u.deps.API.DemoteUser, client.RoleUser, "demoted"
	}
	if err := call(ctx, id); err != nil {
		if client.IsUnauthorized(err) {
			u.deps.expire()
			return err
		}
		u.deps.Toaster.Error("Action failed. Please try again.")
		return err
	}

	u.list.Patch(func(row *client.User) bool {
		if row.ID != id {
			return false
		}
		row.Role = role
		return true
	})
	u.deps.Toaster.Success("User " + done + " successfully!")
	return nil
}

// Register creates an account on behalf of an administrator and reloads page 1
func (u *Users) Register(ctx context.Context, nu client.NewUser) (*client.User, error) {
	fields := client.FieldErrors{}
	if strings.TrimSpace(nu.Name) == "" {
		fields["name"] = "Name is required"
	}
	checkEmail(fields, nu.Email)
	if strings.TrimSpace(nu.Password) == "" || len(nu.Password) < MinPasswordLength {
		fields["password"] = "At least 6 characters"
	}
	if nu.Role == "" {
		nu.Role = client.RoleUser
	}
	if nu.Role != client.RoleUser && nu.Role != client.RoleAdmin {
		fields["role"] = "Role must be user or admin"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}

	user, err := u.deps.API.RegisterUser(ctx, nu)
	if err != nil {
		return nil, u.deps.fail(err, "Registration failed")
	}
	u.deps.Toaster.Success("User registered successfully!")
	u.list.Load(1)
	return user, nil
}
