package ports

import (
	"context"
	"errors"
	"fmt"
)

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  string
}

// Eq builds an equality Filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Value: value}
}

// Order sorts a Select result.
type Order struct {
	Column    string
	Ascending bool
}

// Query describes a row-level read against one remote table.
type Query struct {
	// Columns is the select list, including embedded joins. Empty means "*".
	Columns string
	Filters []Filter
	Order   *Order
	// Limit caps the number of rows; zero means no limit.
	Limit int
	// Single asks for exactly one row encoded as an object instead of an array.
	Single bool
}

// RemoteErrorKind classifies a remote failure for the fallback policy.
type RemoteErrorKind int

const (
	// RemoteGeneric covers server faults and unparseable responses.
	RemoteGeneric RemoteErrorKind = iota
	// RemoteTransport covers connection failures and timeouts.
	RemoteTransport
	// RemoteStructural means the backend schema is missing a table, column or relationship.
	RemoteStructural
	// RemoteNotFound means the query ran but matched no row.
	RemoteNotFound
	// RemoteValidation means the backend rejected the request itself.
	RemoteValidation
)

func (k RemoteErrorKind) String() string {
	switch k {
	case RemoteTransport:
		return "transport"
	case RemoteStructural:
		return "structural"
	case RemoteNotFound:
		return "not_found"
	case RemoteValidation:
		return "validation"
	default:
		return "generic"
	}
}

// RemoteError is returned by every RemoteBackend method on failure.
type RemoteError struct {
	Kind    RemoteErrorKind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("remote %s error (%d %s): %s", e.Kind, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("remote %s error (%d): %s", e.Kind, e.Status, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// KindOf classifies any error coming back from a remote call. Errors that
// are not RemoteErrors are treated as generic failures.
func KindOf(err error) RemoteErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return RemoteTransport
	}
	return RemoteGeneric
}

// RemoteUser is the identity returned by the remote auth service.
type RemoteUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
	// HasSession is set when the call that returned the user also opened a
	// session, which sign-up does only for auto-confirmed accounts.
	HasSession bool `json:"-"`
}

// Remote auth event names.
const (
	AuthEventInitialSession = "INITIAL_SESSION"
	AuthEventSignedIn       = "SIGNED_IN"
	AuthEventSignedOut      = "SIGNED_OUT"
	AuthEventTokenRefreshed = "TOKEN_REFRESHED"
	AuthEventUserUpdated    = "USER_UPDATED"
)

// RemoteAuthEvent is emitted by the remote session holder. User is nil when
// there is no session.
type RemoteAuthEvent struct {
	Event string
	User  *RemoteUser
}

// Pinger issues the cheapest possible round trip to the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RemoteDatabase is row-level CRUD against the remote tables. Bodies are
// raw JSON; Insert and Update return the affected row as an object.
type RemoteDatabase interface {
	Select(ctx context.Context, table string, q Query) ([]byte, error)
	Insert(ctx context.Context, table string, row any, columns string) ([]byte, error)
	Update(ctx context.Context, table string, filters []Filter, patch any, columns string) ([]byte, error)
}

// RemoteAuth is the remote identity service.
type RemoteAuth interface {
	SignInWithPassword(ctx context.Context, email, password string) (*RemoteUser, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*RemoteUser, error)
	// SignInWithOAuth returns the URL the user must visit to finish signing in.
	SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns nil without error when no session is held.
	CurrentUser(ctx context.Context) (*RemoteUser, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	ResendConfirmation(ctx context.Context, email string) error
	// OnAuthStateChange replays the current session as INITIAL_SESSION and
	// then reports every change.
	OnAuthStateChange(fn func(RemoteAuthEvent)) (unsubscribe func())
}

// RemoteBackend is everything the façades need from the hosted backend.
type RemoteBackend interface {
	Pinger
	RemoteDatabase
	RemoteAuth
}
