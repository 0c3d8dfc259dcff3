package chat

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPermanent wraps failures that retrying cannot fix, such as revoked
// permissions. Callers should surface these immediately instead of backing
// off.
var ErrPermanent = errors.New("permanent store failure")

func permanentErr(err error) error {
	return errors.Join(ErrPermanent, err)
}

// isPermanent reports whether err should short-circuit the retry loop.
// Authorization failures and schema-level errors are permanent; connection
// and availability problems are transient.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermanent) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "28"): // invalid authorization
			return true
		case pgErr.Code == "42501": // insufficient privilege
			return true
		case strings.HasPrefix(pgErr.Code, "42"): // undefined table/column
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "unauthenticated")
}

// isSessionFatal reports whether a subscription error ends the session
// outright. Authorization failures and hard unavailability go straight to
// the user; everything else earns a reconnect attempt.
func isSessionFatal(err error) bool {
	if isPermanent(err) {
		return true
	}
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unavailable")
}
