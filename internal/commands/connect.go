package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"firelist/internal/backend/firebase"
	"firelist/internal/config"
	"firelist/internal/exitcode"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5

	// Refresh check for an existing token
	tokenCheckTimeout = 10 * time.Second
)

func init() {
	Register(&ConnectCmd{})
}

// ConnectCmd implements the connect command.
// It stores a user OAuth token that the backend uses when no service-account
// file is configured.
type ConnectCmd struct{}

func (c *ConnectCmd) Name() string       { return "connect" }
func (c *ConnectCmd) Aliases() []string  { return nil }
func (c *ConnectCmd) Synopsis() string   { return "Authorize access to the Google project" }
func (c *ConnectCmd) Usage() string      { return "firelist connect [common flags]" }
func (c *ConnectCmd) NeedsBackend() bool { return false }

func (c *ConnectCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ConnectCmd) Run(ctx context.Context, env *Env, args []string) int {
	cfg, errOut := env.Cfg, env.ErrOut

	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		fmt.Fprintln(errOut, "To connect firelist to your Firebase project you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Select the Google Cloud project behind your Firebase project")
		fmt.Fprintln(errOut, "3. Create OAuth 2.0 credentials:")
		fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
		fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
		fmt.Fprintln(errOut, "   - Download the JSON file")
		fmt.Fprintln(errOut, "4. Save it as:")
		fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'firelist connect' again.")
		fmt.Fprintln(errOut, "Alternatively, run 'firelist init --project <id> --credentials <service-account.json>'.")
		return exitcode.AuthError
	}

	if cfg.HasToken() && connected(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(env.Out, "already connected")
		}
		return exitcode.Success
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read %s: %v\n", config.OAuthClientFile, err)
		return exitcode.AuthError
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, firebase.Scopes...)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid %s: %v\n", config.OAuthClientFile, err)
		return exitcode.AuthError
	}

	listener, err := listenLoopback()
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return exitcode.AuthError
	}
	defer listener.Close()

	cb := newCallbackServer(listener)
	oauthConfig.RedirectURL = cb.redirectURL()

	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL(cb.state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	code, err := cb.wait(ctx, oauthCallbackTimeout)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := saveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	env.logger().Debug("token saved", zap.String("path", cfg.TokenPath()))

	if cfg.Settings.ProjectID == "" && !cfg.Quiet {
		fmt.Fprintln(errOut, "note: no project configured (run: firelist init --project <id>)")
	}
	return done(env)
}

// listenLoopback binds the first free port of the callback range.
func listenLoopback() (net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", oauthStartPort+i))
		if err == nil {
			return l, nil
		}
	}
	return nil, errors.New("no available port found")
}

// connected reports whether the stored token carries a refresh token that
// the provider still accepts.
func connected(ctx context.Context, cfg *config.Config) bool {
	oauthConfig, token, err := firebase.LoadUserToken(cfg)
	if err != nil || token.RefreshToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()

	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}

// callbackServer receives the authorization redirect on the loopback port.
// Requests without the expected state are answered and ignored.
type callbackServer struct {
	state  string
	port   int
	srv    *http.Server
	result chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

func newCallbackServer(l net.Listener) *callbackServer {
	cb := &callbackServer{
		state:  uuid.NewString(),
		port:   l.Addr().(*net.TCPAddr).Port,
		result: make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", cb.handle)
	cb.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := cb.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.send(callbackResult{err: err})
		}
	}()
	return cb
}

func (cb *callbackServer) redirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", cb.port)
}

func (cb *callbackServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != cb.state {
		http.Error(w, "Unknown authorization request", http.StatusBadRequest)
		return
	}

	if reason := q.Get("error"); reason != "" {
		http.Error(w, "Authorization was not granted", http.StatusForbidden)
		cb.send(callbackResult{err: fmt.Errorf("authorization denied: %s", reason)})
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code in callback", http.StatusBadRequest)
		cb.send(callbackResult{err: errors.New("no code in callback")})
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>firelist is connected</h1><p>You may close this window.</p></body></html>")
	cb.send(callbackResult{code: code})
}

// send keeps the first result only.
func (cb *callbackServer) send(r callbackResult) {
	select {
	case cb.result <- r:
	default:
	}
}

// wait returns the authorization code, then shuts the server down.
func (cb *callbackServer) wait(ctx context.Context, timeout time.Duration) (string, error) {
	defer cb.shutdown()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-cb.result:
		return r.code, r.err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func (cb *callbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = cb.srv.Shutdown(ctx)
}

// saveToken saves an OAuth token to a file with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return config.WriteSecret(path, data)
}
