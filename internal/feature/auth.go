// ABOUTME: Guest and forced password change flows
// ABOUTME: Client-side checks, then session updates from the backend responses

package feature

import (
	"context"
	"regexp"
	"strings"

	"github.com/interntrack/admin-cli/internal/client"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest password accepted client-side
const MinPasswordLength = 6

// PasswordStrength scores a password from 0 to 4: one point each for
// length, an uppercase letter, a digit, and a symbol
func PasswordStrength(password string) int {
	score := 0
	if len(password) >= MinPasswordLength {
		score++
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r < 'a' || r > 'z':
			symbol = true
		}
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

// StrengthLabel names a strength score
func StrengthLabel(score int) string {
	switch {
	case score <= 1:
		return "Very Weak"
	case score == 2:
		return "Weak"
	case score == 3:
		return "Medium"
	default:
		return "Strong"
	}
}

func checkEmail(fields client.FieldErrors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Valid email required"
	}
}

func checkNewPassword(fields client.FieldErrors, password, confirmation string) {
	if len(password) < MinPasswordLength {
		fields["password"] = "At least 6 characters"
	}
	if password != confirmation {
		fields["password_confirmation"] = "Passwords do not match"
	}
}

// Auth runs the flows that change who is signed in
type Auth struct {
	deps Deps
}

// NewAuth creates the auth flows
func NewAuth(d Deps) *Auth {
	return &Auth{deps: d.withDefaults()}
}

// Login checks the credentials locally, then signs in through the session
func (a *Auth) Login(ctx context.Context, creds client.Credentials) (*client.AuthResponse, error) {
	fields := client.FieldErrors{}
	checkEmail(fields, creds.Email)
	if creds.Password == "" {
		fields["password"] = "Password is required"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}
	return a.deps.Session.Login(ctx, creds)
}

// Register creates an account and signs it in
func (a *Auth) Register(ctx context.Context, reg client.Registration) (*client.AuthResponse, error) {
	fields := client.FieldErrors{}
	if strings.TrimSpace(reg.Name) == "" {
		fields["name"] = "Name is required"
	}
	checkEmail(fields, reg.Email)
	checkNewPassword(fields, reg.Password, reg.PasswordConfirmation)
	if err := invalid(fields); err != nil {
		return nil, err
	}

	resp, err := a.deps.API.Register(ctx, reg)
	if err != nil {
		return nil, a.deps.fail(err, "Registration failed")
	}
	if err := a.deps.Session.SignIn(resp); err != nil {
		return nil, err
	}
	a.deps.changed()
	return resp, nil
}

// ForceChangePassword sets the new password required before any other
// screen is reachable. Success clears the pending flag.
func (a *Auth) ForceChangePassword(ctx context.Context, password, confirmation string) (string, error) {
	fields := client.FieldErrors{}
	checkNewPassword(fields, password, confirmation)
	if err := invalid(fields); err != nil {
		return "", err
	}

	result, err := a.deps.API.ForceUpdatePassword(ctx, client.PasswordUpdate{
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return "", a.deps.fail(err, "An error occurred. Please try again.")
	}
	a.deps.Session.PasswordChanged(result.User)
	a.deps.changed()

	msg := result.Message
	if msg == "" {
		msg = "Password updated successfully."
	}
	a.deps.Toaster.Success(msg)
	return msg, nil
}

// Logout signs out locally and best-effort revokes the token
func (a *Auth) Logout(ctx context.Context) {
	a.deps.Session.Logout(ctx)
	a.deps.changed()
}
