package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/codelife/internal/client/api"
	"github.com/dmitrijs2005/codelife/internal/client/config"
	"github.com/dmitrijs2005/codelife/internal/client/identity"
	"github.com/dmitrijs2005/codelife/internal/client/identity/firebase"
	"github.com/dmitrijs2005/codelife/internal/client/identity/kratos"
	"github.com/dmitrijs2005/codelife/internal/client/refdata"
	"github.com/dmitrijs2005/codelife/internal/client/session"
	"github.com/dmitrijs2005/codelife/internal/client/store"
	"github.com/dmitrijs2005/codelife/internal/logging"
	"github.com/dmitrijs2005/codelife/internal/output"
)

// sessionService is the part of session.Session the commands use.
type sessionService interface {
	Current() *identity.Identity
	SignUp(ctx context.Context, email, password string) (*identity.Identity, error)
	SignIn(ctx context.Context, email, password string) (*identity.Identity, error)
	SignOut(ctx context.Context) error
}

// backendService is the authenticated CodeLife API.
type backendService interface {
	LoadDashboard(ctx context.Context) (*api.Dashboard, error)
	GetUserProfile(ctx context.Context) (any, error)
	GetUserCourses(ctx context.Context) (any, error)
	UpdateUserProfile(ctx context.Context, p api.ProfileUpdate) (any, error)
	ListCourses(ctx context.Context) (any, error)
	GetCourse(ctx context.Context, courseID string) (any, error)
	CompleteLesson(ctx context.Context, courseID, lessonID string) (any, error)
	GetProgressSummary(ctx context.Context) (any, error)
	RunScan(ctx context.Context, tool api.ScanTool, req api.ScanRequest) (any, error)
	LatestThreats(ctx context.Context) (any, error)
	ThreatStats(ctx context.Context) (any, error)
	RefreshThreats(ctx context.Context) (any, error)
}

// lookupService serves the reference lists offered during sign-up.
type lookupService interface {
	Countries(ctx context.Context) ([]string, error)
	States(ctx context.Context, country string) ([]string, error)
	Universities(ctx context.Context, country string) ([]refdata.University, error)
}

type App struct {
	config  *config.Config
	session sessionService
	api     backendService
	lookup  lookupService
	printer *output.Printer
	log     logging.Logger
	reader  *bufio.Reader

	// set while a command here changes the identity itself
	localChange atomic.Bool

	// set only when NewApp owns them
	sess *session.Session
	db   *sql.DB
}

// NewApp wires the credential store, identity provider, session and API
// clients described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(c.SessionDBPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	db, err := store.Open(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	httpClient := &http.Client{Timeout: c.RequestTimeout}

	provider, err := newProvider(c, httpClient, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sess := session.New(provider, store.NewSQLiteCredentialStore(db), log)

	apiClient := api.New(sess, api.Options{
		BaseURL:    c.APIBaseURL,
		Timeout:    c.RequestTimeout,
		RateLimit:  c.RateLimit,
		Burst:      1,
		HTTPClient: &http.Client{},
		Logger:     log,
	})

	lookup := refdata.New(refdata.Options{
		CountriesURL:    c.CountriesURL,
		StatesURL:       c.StatesURL,
		UniversitiesURL: c.UniversitiesURL,
		Timeout:         c.RequestTimeout,
		Logger:          log,
	})

	return &App{
		config:  c,
		session: sess,
		api:     apiClient,
		lookup:  lookup,
		printer: output.NewPrinter(os.Stdout, os.Stderr, output.ColorsEnabled()),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		sess:    sess,
		db:      db,
	}, nil
}

func newProvider(c *config.Config, httpClient *http.Client, log logging.Logger) (identity.Provider, error) {
	switch c.IdentityProvider {
	case config.ProviderFirebase:
		if c.FirebaseAPIKey == "" {
			return nil, fmt.Errorf("firebase identity provider needs an API key (CODELIFE_FIREBASE_API_KEY)")
		}
		return firebase.New(firebase.Options{
			APIKey:             c.FirebaseAPIKey,
			IdentityToolkitURL: c.FirebaseIdentityToolkitURL,
			SecureTokenURL:     c.FirebaseSecureTokenURL,
			HTTPClient:         httpClient,
			Logger:             log,
		}), nil
	case config.ProviderKratos:
		if c.KratosPublicURL == "" {
			return nil, fmt.Errorf("kratos identity provider needs a public URL (CODELIFE_KRATOS_PUBLIC_URL)")
		}
		return kratos.New(kratos.Options{
			PublicURL:  c.KratosPublicURL,
			HTTPClient: httpClient,
			Logger:     log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", c.IdentityProvider)
	}
}

// Run restores a previous session, starts the session watcher and serves
// the REPL until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.sess != nil {
		if err := a.sess.Restore(ctx); err != nil {
			a.printer.Warning("Could not restore previous session: %v", err)
		}

		unsubscribe := a.sess.Subscribe(a.onIdentityChange)
		defer unsubscribe()

		go a.sess.Watch(ctx, a.checkInterval())
	}

	a.printer.Info("Welcome to CodeLife CLI (type 'help' for commands)")
	if id := a.session.Current(); id != nil {
		a.printer.Success("Signed in as %s", id.Email)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(lineReader{a.reader}))
	return nil
}

func (a *App) checkInterval() time.Duration {
	if a.config != nil && a.config.SessionCheckInterval > 0 {
		return a.config.SessionCheckInterval
	}
	return 30 * time.Second
}

// onIdentityChange reports sign-in or sign-out that did not come from a
// command typed here, such as expiry or another terminal.
func (a *App) onIdentityChange(id *identity.Identity) {
	if a.localChange.Load() {
		return
	}
	if id == nil {
		a.printer.Warning("Session ended. Please log in again.")
		return
	}
	a.printer.Info("Now signed in as %s", id.Email)
}

// changingIdentity runs fn with identity notifications muted.
func (a *App) changingIdentity(fn func() error) error {
	a.localChange.Store(true)
	defer a.localChange.Store(false)
	return fn()
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

func (a *App) getStatus() string {
	if id := a.session.Current(); id != nil {
		return id.Email
	}
	return "guest"
}
