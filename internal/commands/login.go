package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"buildboard/internal/backend/gsheets"
	"buildboard/internal/config"
	"buildboard/internal/exitcode"
)

const (
	callbackWait     = 5 * time.Minute
	exchangeTimeout  = 30 * time.Second
	refreshTimeout   = 10 * time.Second
	callbackPort     = 8085
	callbackAttempts = 5
)

const missingClientHelp = `Google Sheets needs a desktop OAuth client:

  1. Open https://console.cloud.google.com/apis/credentials and pick a project.
  2. Enable https://console.cloud.google.com/apis/library/sheets.googleapis.com
  3. Create Credentials > OAuth client ID > Desktop app, then download the JSON.
  4. Save it as %s/oauth_client.json

Then run 'buildboard login' again.
`

func init() {
	Register(&LoginCmd{})
}

// LoginCmd stores a Google refresh token for the gsheets backend. Smartsheet
// authenticates with an API token from the environment instead.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the store" }
func (c *LoginCmd) Usage() string     { return "buildboard login" }
func (c *LoginCmd) NeedsStore() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	if cfg.Env.Backend != config.BackendGSheets {
		if !cfg.Quiet {
			fmt.Fprintln(out, "smartsheet uses an API token; set BUILDBOARD_API_TOKEN (no login needed)")
		}
		return exitcode.Success
	}
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintf(errOut, missingClientHelp, cfg.Dir)
		return exitcode.AuthError
	}

	oc, err := gsheets.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if cfg.HasToken() && refreshable(ctx, cfg, oc) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	token, err := authorize(ctx, oc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if err := gsheets.SaveToken(cfg, token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// authorize runs the loopback PKCE flow: it prints the consent URL, waits for
// the redirect and exchanges the code.
func authorize(ctx context.Context, oc *oauth2.Config, errOut io.Writer) (*oauth2.Token, error) {
	ln, port, err := listenCallback()
	if err != nil {
		return nil, err
	}
	cb := newCallback(ln)
	defer cb.close()

	oc.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, oc.AuthCodeURL(cb.state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	code, err := cb.wait(ctx, callbackWait)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := oc.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

func listenCallback() (net.Listener, int, error) {
	for port := callbackPort; port < callbackPort+callbackAttempts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return ln, port, nil
		}
	}
	return nil, 0, errors.New("could not bind to a local port for the OAuth callback")
}

// callback receives a single OAuth redirect carrying a matching state.
type callback struct {
	state string
	srv   *http.Server
	codes chan string
	errs  chan error
}

func newCallback(ln net.Listener) *callback {
	cb := &callback{
		state: oauth2.GenerateVerifier(),
		codes: make(chan string, 1),
		errs:  make(chan error, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", cb.handle)
	cb.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := cb.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.fail(err)
		}
	}()
	return cb
}

func (cb *callback) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("state") != cb.state:
		http.Error(w, "state mismatch", http.StatusBadRequest)
		cb.fail(errors.New("oauth callback state mismatch"))
	case q.Get("error") != "":
		http.Error(w, "authorization denied", http.StatusBadRequest)
		cb.fail(fmt.Errorf("authorization denied: %s", q.Get("error")))
	case q.Get("code") == "":
		http.Error(w, "no code in callback", http.StatusBadRequest)
		cb.fail(errors.New("no code in callback"))
	default:
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>buildboard is signed in</h1><p>You may close this window.</p></body></html>")
		select {
		case cb.codes <- q.Get("code"):
		default:
		}
	}
}

func (cb *callback) fail(err error) {
	select {
	case cb.errs <- err:
	default:
	}
}

func (cb *callback) wait(ctx context.Context, limit time.Duration) (string, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case code := <-cb.codes:
		return code, nil
	case err := <-cb.errs:
		return "", err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func (cb *callback) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = cb.srv.Shutdown(ctx)
}

// refreshable reports whether the saved token carries a refresh token that
// still yields an access token.
func refreshable(ctx context.Context, cfg *config.Config, oc *oauth2.Config) bool {
	token, err := gsheets.LoadToken(cfg)
	if err != nil || token.RefreshToken == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	_, err = oc.TokenSource(ctx, token).Token()
	return err == nil
}
