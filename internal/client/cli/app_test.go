package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/codelife/internal/client/api"
	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/client/refdata"
	"github.com/dmitrijs2005/codelife/internal/logging"
	"github.com/dmitrijs2005/codelife/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubInputs(t *testing.T, answers []string, passwords ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeSession struct {
	id        *identity.Identity
	signInErr error
	signUpErr error

	email    string
	password string
	signOuts int
}

func (f *fakeSession) Current() *identity.Identity {
	if f.id == nil {
		return nil
	}
	c := *f.id
	return &c
}

func (f *fakeSession) SignUp(_ context.Context, email, password string) (*identity.Identity, error) {
	f.email, f.password = email, password
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.id = &identity.Identity{UID: "u1", Email: email}
	return f.Current(), nil
}

func (f *fakeSession) SignIn(_ context.Context, email, password string) (*identity.Identity, error) {
	f.email, f.password = email, password
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.id = &identity.Identity{UID: "u1", Email: email, EmailVerified: true}
	return f.Current(), nil
}

func (f *fakeSession) SignOut(context.Context) error {
	f.signOuts++
	f.id = nil
	return nil
}

// fakeAPI answers every call with the JSON in replies[name] or errs[name].
type fakeAPI struct {
	replies map[string]string
	errs    map[string]error

	calls   []string
	profile *api.ProfileUpdate
	scan    *api.ScanRequest
}

func (f *fakeAPI) reply(name string) (any, error) {
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	raw, ok := f.replies[name]
	if !ok {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		panic(err)
	}
	return v, nil
}

func (f *fakeAPI) LoadDashboard(context.Context) (*api.Dashboard, error) {
	p, err := f.reply("profile")
	if err != nil {
		return nil, err
	}
	g, err := f.reply("progress")
	if err != nil {
		return nil, err
	}
	return &api.Dashboard{Profile: p, Progress: g}, nil
}
func (f *fakeAPI) GetUserProfile(context.Context) (any, error) { return f.reply("profile") }
func (f *fakeAPI) GetUserCourses(context.Context) (any, error) { return f.reply("mycourses") }
func (f *fakeAPI) UpdateUserProfile(_ context.Context, p api.ProfileUpdate) (any, error) {
	f.profile = &p
	return f.reply("update")
}
func (f *fakeAPI) ListCourses(context.Context) (any, error) { return f.reply("courses") }
func (f *fakeAPI) GetCourse(_ context.Context, id string) (any, error) {
	return f.reply("course " + id)
}
func (f *fakeAPI) CompleteLesson(_ context.Context, c, l string) (any, error) {
	return f.reply("complete " + c + "/" + l)
}
func (f *fakeAPI) GetProgressSummary(context.Context) (any, error) { return f.reply("summary") }
func (f *fakeAPI) RunScan(_ context.Context, tool api.ScanTool, req api.ScanRequest) (any, error) {
	f.scan = &req
	return f.reply("scan " + string(tool))
}
func (f *fakeAPI) LatestThreats(context.Context) (any, error)  { return f.reply("threats") }
func (f *fakeAPI) ThreatStats(context.Context) (any, error)    { return f.reply("threat-stats") }
func (f *fakeAPI) RefreshThreats(context.Context) (any, error) { return f.reply("threat-refresh") }

type fakeLookup struct {
	countries []string
	states    []string
	unis      []refdata.University
	err       error
}

func (f *fakeLookup) Countries(context.Context) ([]string, error) { return f.countries, f.err }
func (f *fakeLookup) States(context.Context, string) ([]string, error) {
	return f.states, f.err
}
func (f *fakeLookup) Universities(context.Context, string) ([]refdata.University, error) {
	return f.unis, f.err
}

type testApp struct {
	*App
	sess   *fakeSession
	api    *fakeAPI
	lookup *fakeLookup
	out    *bytes.Buffer
	errw   *bytes.Buffer
}

func newTestApp(signedIn bool) *testApp {
	sess := &fakeSession{}
	if signedIn {
		sess.id = &identity.Identity{UID: "u1", Email: "ada@example.com", EmailVerified: true}
	}
	fa := &fakeAPI{replies: map[string]string{}, errs: map[string]error{}}
	fl := &fakeLookup{}
	out, errw := &bytes.Buffer{}, &bytes.Buffer{}

	return &testApp{
		App: &App{
			session: sess,
			api:     fa,
			lookup:  fl,
			printer: output.NewPrinter(out, errw, false),
			log:     logging.Discard(),
		},
		sess:   sess,
		api:    fa,
		lookup: fl,
		out:    out,
		errw:   errw,
	}
}

// ------------ auth ------------

func TestLogin_Success(t *testing.T) {
	ta := newTestApp(false)
	stubInputs(t, []string{"ada@example.com"}, "secret1")

	require.NoError(t, ta.Login(context.Background()))
	assert.Equal(t, "ada@example.com", ta.sess.email)
	assert.Equal(t, "secret1", ta.sess.password)
	assert.Contains(t, ta.out.String(), "[OK] Signed in as ada@example.com")
	assert.True(t, ta.isLoggedIn())
}

func TestLogin_ErrorPropagates(t *testing.T) {
	ta := newTestApp(false)
	ta.sess.signInErr = &identity.AuthError{Code: "INVALID_LOGIN_CREDENTIALS", Message: "Invalid email or password", Err: identity.ErrInvalidCredentials}
	stubInputs(t, []string{"ada@example.com"}, "wrong12")

	err := ta.Login(context.Background())
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.False(t, ta.isLoggedIn())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	ta := newTestApp(false)
	stubInputs(t, []string{"ada@example.com"}, "secret1", "secret2")

	err := ta.Register(context.Background())
	require.ErrorIs(t, err, errPasswordMismatch)
	assert.Empty(t, ta.sess.email, "identity service not contacted")
}

func TestRegister_SkipProfile(t *testing.T) {
	ta := newTestApp(false)
	stubInputs(t, []string{"grace@example.com", ""}, "secret1", "secret1")

	require.NoError(t, ta.Register(context.Background()))
	assert.Equal(t, "grace@example.com", ta.sess.email)
	assert.Nil(t, ta.api.profile)
	assert.Contains(t, ta.out.String(), "Account created for grace@example.com")
}

func TestRegister_WithProfile(t *testing.T) {
	ta := newTestApp(false)
	ta.lookup.states = []string{"Riga", "Kurzeme"}
	ta.lookup.unis = []refdata.University{{Name: "Riga Technical University"}}
	stubInputs(t, []string{"grace@example.com", "Latvia", "Riga", "Riga Technical University"}, "secret1", "secret1")

	require.NoError(t, ta.Register(context.Background()))
	require.NotNil(t, ta.api.profile)
	assert.Equal(t, api.ProfileUpdate{Country: "Latvia", State: "Riga", University: "Riga Technical University"}, *ta.api.profile)
	assert.Contains(t, ta.out.String(), "States: Riga, Kurzeme")
	assert.Contains(t, ta.out.String(), "[OK] Profile saved")
}

func TestRegister_LookupFailureIsOnlyAWarning(t *testing.T) {
	ta := newTestApp(false)
	ta.lookup.err = errors.New("dns failure")
	stubInputs(t, []string{"grace@example.com", "Latvia", "", ""}, "secret1", "secret1")

	require.NoError(t, ta.Register(context.Background()))
	require.NotNil(t, ta.api.profile)
	assert.Equal(t, "Latvia", ta.api.profile.Country)
	assert.Contains(t, ta.errw.String(), "[WARN] State list unavailable")
}

func TestLogout(t *testing.T) {
	ta := newTestApp(true)

	require.NoError(t, ta.Logout(context.Background()))
	assert.Equal(t, 1, ta.sess.signOuts)
	assert.False(t, ta.isLoggedIn())
}

func TestWhoami(t *testing.T) {
	ta := newTestApp(true)
	require.NoError(t, ta.Whoami(context.Background()))
	assert.Contains(t, ta.out.String(), "Email: ada@example.com (verified)")

	signedOut := newTestApp(false)
	require.ErrorIs(t, signedOut.Whoami(context.Background()), identity.ErrNotAuthenticated)
}

func TestReportError(t *testing.T) {
	ta := newTestApp(true)

	ta.reportError(&api.APIError{Status: 404, Endpoint: "/courses/x", Message: "Not found"})
	ta.reportError(&identity.AuthError{Message: "Your session has expired, please sign in again", Err: identity.ErrSessionExpired})

	assert.Contains(t, ta.errw.String(), "[ERROR] Not found\n")
	assert.Contains(t, ta.errw.String(), "[ERROR] Your session has expired, please sign in again\n")
	assert.Contains(t, ta.out.String(), "Type 'login' to sign in again.")
}

func TestOnIdentityChange(t *testing.T) {
	ta := newTestApp(true)

	ta.onIdentityChange(nil)
	assert.Contains(t, ta.errw.String(), "Session ended")

	ta.errw.Reset()
	_ = ta.changingIdentity(func() error {
		ta.onIdentityChange(nil)
		return nil
	})
	assert.Empty(t, ta.errw.String())
}

func TestGetStatus(t *testing.T) {
	assert.Equal(t, "ada@example.com", newTestApp(true).getStatus())
	assert.Equal(t, "guest", newTestApp(false).getStatus())
}
