// ABOUTME: Tests for the session store
// ABOUTME: Covers one-time bootstrap, token lifecycle, login, logout, and expiry

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/localstore"
)

type fakeAPI struct {
	meCalls     atomic.Int32
	meUser      *client.User
	meErr       error
	meBlock     chan struct{}
	loginResp   *client.AuthResponse
	loginErr    error
	logoutErr   error
	logoutCalls atomic.Int32
}

func (f *fakeAPI) Me(ctx context.Context) (*client.User, error) {
	f.meCalls.Add(1)
	if f.meBlock != nil {
		<-f.meBlock
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meUser, nil
}

func (f *fakeAPI) Login(ctx context.Context, creds client.Credentials) (*client.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	return f.logoutErr
}

func newStore(t *testing.T, api *fakeAPI, token string) (*Store, *localstore.Store) {
	t.Helper()
	tokens := localstore.New(t.TempDir())
	if token != "" {
		tokens.SetToken(token)
	}
	return New(api, tokens), tokens
}

func TestNew_StartsLoading(t *testing.T) {
	s, _ := newStore(t, &fakeAPI{}, "")
	st := s.Snapshot()
	if !st.Loading || st.Initialized || st.User != nil {
		t.Errorf("unexpected initial state %+v", st)
	}
}

func TestInitialize_NoTokenMakesNoRequest(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newStore(t, api, "")

	s.Initialize(context.Background())

	st := s.Snapshot()
	if st.User != nil || st.Loading || !st.Initialized {
		t.Errorf("expected signed-out initialized state, got %+v", st)
	}
	if api.meCalls.Load() != 0 {
		t.Errorf("expected zero /me calls, got %d", api.meCalls.Load())
	}
}

func TestInitialize_WithTokenPopulatesUser(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1, Name: "Jane", MustChangePassword: true}}
	s, tokens := newStore(t, api, "tok")

	s.Initialize(context.Background())

	st := s.Snapshot()
	if st.User == nil || st.User.Name != "Jane" {
		t.Fatalf("expected user, got %+v", st)
	}
	if !st.MustChangePassword {
		t.Error("expected must change password from /me")
	}
	if tokens.Token() != "tok" {
		t.Error("expected token to be kept")
	}
}

func TestInitialize_FailureClearsToken(t *testing.T) {
	failures := []error{
		&client.APIError{StatusCode: 401, Message: "Unauthenticated."},
		errors.New("cannot connect to backend"),
		&client.APIError{StatusCode: 500},
	}
	for _, failure := range failures {
		api := &fakeAPI{meErr: failure}
		s, tokens := newStore(t, api, "stale")

		s.Initialize(context.Background())

		st := s.Snapshot()
		if st.User != nil || st.Loading || !st.Initialized {
			t.Errorf("%v: expected signed-out state, got %+v", failure, st)
		}
		if tokens.Token() != "" {
			t.Errorf("%v: expected token cleared", failure)
		}
	}
}

func TestInitialize_AtMostOnce(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1}}
	s, _ := newStore(t, api, "tok")

	for i := 0; i < 5; i++ {
		s.Initialize(context.Background())
	}
	if api.meCalls.Load() != 1 {
		t.Errorf("expected one /me call, got %d", api.meCalls.Load())
	}
}

func TestInitialize_ConcurrentCallersShareFetch(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1}, meBlock: make(chan struct{})}
	s, _ := newStore(t, api, "tok")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Initialize(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(api.meBlock)
	wg.Wait()

	if api.meCalls.Load() != 1 {
		t.Errorf("expected one /me call, got %d", api.meCalls.Load())
	}
	if s.Snapshot().User == nil {
		t.Error("expected user after concurrent initialize")
	}
}

func TestLogin_Success(t *testing.T) {
	api := &fakeAPI{loginResp: &client.AuthResponse{
		User:  &client.User{ID: 2, Name: "Admin", Role: client.RoleAdmin},
		Token: "fresh",
	}}
	s, tokens := newStore(t, api, "")

	resp, err := s.Login(context.Background(), client.Credentials{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "fresh" || tokens.Token() != "fresh" {
		t.Error("expected token persisted and returned")
	}
	st := s.Snapshot()
	if st.User == nil || st.Loading || !st.Initialized {
		t.Errorf("expected signed-in state, got %+v", st)
	}
}

func TestLogin_ValidationErrorPropagates(t *testing.T) {
	vErr := &client.ValidationError{Fields: client.FieldErrors{"email": "invalid"}}
	api := &fakeAPI{loginErr: vErr}
	s, tokens := newStore(t, api, "")

	_, err := s.Login(context.Background(), client.Credentials{})
	got, ok := client.AsValidation(err)
	if !ok || got.Fields["email"] != "invalid" {
		t.Fatalf("expected validation error unchanged, got %v", err)
	}
	if tokens.Token() != "" {
		t.Error("expected no token after failed login")
	}
}

func TestLogout_AlwaysClearsLocally(t *testing.T) {
	api := &fakeAPI{
		meUser:    &client.User{ID: 1},
		logoutErr: errors.New("network down"),
	}
	s, tokens := newStore(t, api, "tok")
	s.Initialize(context.Background())

	s.Logout(context.Background())

	st := s.Snapshot()
	if st.User != nil || st.Initialized || st.MustChangePassword {
		t.Errorf("expected reset state, got %+v", st)
	}
	if tokens.Token() != "" {
		t.Error("expected token cleared despite revoke failure")
	}
	if api.logoutCalls.Load() != 1 {
		t.Errorf("expected one revoke call, got %d", api.logoutCalls.Load())
	}
}

func TestLogout_AllowsReinitialize(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1}}
	s, _ := newStore(t, api, "tok")
	s.Initialize(context.Background())
	s.Logout(context.Background())

	s.Initialize(context.Background())
	st := s.Snapshot()
	if !st.Initialized || st.User != nil {
		t.Errorf("expected signed-out initialized state, got %+v", st)
	}
	if api.meCalls.Load() != 1 {
		t.Errorf("expected no /me without a token, got %d calls", api.meCalls.Load())
	}
}

func TestLoginDuringBootstrapWins(t *testing.T) {
	api := &fakeAPI{
		meErr:   errors.New("slow failure"),
		meBlock: make(chan struct{}),
		loginResp: &client.AuthResponse{
			User:  &client.User{ID: 9, Name: "New"},
			Token: "new-token",
		},
	}
	s, tokens := newStore(t, api, "old-token")

	done := make(chan struct{})
	go func() {
		s.Initialize(context.Background())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	if _, err := s.Login(context.Background(), client.Credentials{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(api.meBlock)
	<-done

	st := s.Snapshot()
	if st.User == nil || st.User.ID != 9 {
		t.Errorf("expected login to survive stale bootstrap, got %+v", st)
	}
	if tokens.Token() != "new-token" {
		t.Errorf("expected new token kept, got %q", tokens.Token())
	}
}

func TestPasswordChanged_ClearsFlag(t *testing.T) {
	api := &fakeAPI{loginResp: &client.AuthResponse{
		User:  &client.User{ID: 3, MustChangePassword: true},
		Token: "t",
	}}
	s, _ := newStore(t, api, "")
	s.Login(context.Background(), client.Credentials{})

	if !s.Snapshot().MustChangePassword {
		t.Fatal("expected pending password change after login")
	}
	s.PasswordChanged(&client.User{ID: 3, Name: "Updated"})

	st := s.Snapshot()
	if st.MustChangePassword || st.User.MustChangePassword {
		t.Error("expected flag cleared")
	}
	if st.User.Name != "Updated" {
		t.Errorf("expected returned user applied, got %s", st.User.Name)
	}
}

func TestUpdateUser_KeepsPendingFlag(t *testing.T) {
	api := &fakeAPI{loginResp: &client.AuthResponse{
		User:  &client.User{ID: 3, MustChangePassword: true},
		Token: "t",
	}}
	s, _ := newStore(t, api, "")
	s.Login(context.Background(), client.Credentials{})

	s.UpdateUser(&client.User{ID: 3, Name: "Renamed"})
	st := s.Snapshot()
	if st.User.Name != "Renamed" || !st.MustChangePassword {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestExpire(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1}}
	s, tokens := newStore(t, api, "tok")
	s.Initialize(context.Background())

	s.Expire()

	st := s.Snapshot()
	if st.User != nil || !st.Initialized || st.Loading {
		t.Errorf("expected signed-out initialized state, got %+v", st)
	}
	if tokens.Token() != "" {
		t.Error("expected token cleared on expiry")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	api := &fakeAPI{meUser: &client.User{ID: 1, Name: "Jane"}}
	s, _ := newStore(t, api, "tok")
	s.Initialize(context.Background())

	st := s.Snapshot()
	st.User.Name = "Mutated"
	if s.Snapshot().User.Name != "Jane" {
		t.Error("expected snapshot mutation not to leak into the store")
	}
}
