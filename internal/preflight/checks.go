package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"expertstats/internal/services"
	"expertstats/internal/services/codeable"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSession reports whether a session token is available.
func CheckSession(token string) Result {
	const name = "Session"
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "no token (run `expertstats login` or set EXPERTSTATS_API_TOKEN)"}
	}
	return Result{Name: name, Passed: true, Detail: "token configured"}
}

// CheckAPI verifies that the API is reachable and accepts the token.
// It uses a 10-second timeout and a single attempt.
func CheckAPI(ctx context.Context, baseURL, token string) Result {
	const name = "Platform API"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := codeable.New(baseURL, token, codeable.WithTimeout(10*time.Second))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := client.Self(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable, token accepted"}
}

func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	if errors.Is(err, services.ErrNotAuthenticated) {
		return "token rejected (run `expertstats login`)"
	}
	return err.Error()
}
