package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// Decision says which backend serves one call.
type Decision int

const (
	UseRemote Decision = iota
	UseLocal
)

func (d Decision) String() string {
	if d == UseRemote {
		return "remote"
	}
	return "local"
}

// Policy picks the backend for each call from the offline preference, the
// cached reachability and, when that says down, a just-in-time re-probe.
type Policy struct {
	reach ports.Reachability
	pref  ports.OfflinePreference
}

func NewPolicy(reach ports.Reachability, pref ports.OfflinePreference) *Policy {
	return &Policy{reach: reach, pref: pref}
}

func (p *Policy) Decide(ctx context.Context) Decision {
	if p.pref != nil && p.pref.OfflineModePreference() {
		return UseLocal
	}
	if !p.reach.EnsureReachable(ctx) {
		return UseLocal
	}
	return UseRemote
}

// fallback applies the shared failure policy of both façades.
type fallback struct {
	policy   *Policy
	reach    ports.Reachability
	recorder ports.Recorder
	log      zerolog.Logger
}

// surface inspects a failed remote call. It returns the error to hand back
// to the caller, or nil when the call should be served locally instead.
// Fallback-class failures mark the backend unreachable.
func (f *fallback) surface(op string, err error, notFound *domain.UserError) error {
	if errors.Is(err, context.Canceled) {
		return domain.NewUserError(domain.CodeUnavailable, "request cancelled")
	}

	kind := ports.KindOf(err)
	switch kind {
	case ports.RemoteValidation:
		f.log.Debug().Err(err).Str("op", op).Msg("remote rejected request")
		return userErrorFromRemote(err)
	case ports.RemoteNotFound:
		if notFound == nil {
			notFound = domain.ErrNotFound
		}
		return notFound
	}

	ev := f.log.Warn()
	if kind == ports.RemoteStructural {
		ev = f.log.Error()
	}
	ev.Err(err).Str("op", op).Str("kind", kind.String()).Str("backend", "local").
		Msg("remote call failed, serving from local store")

	f.reach.MarkUnreachable(err)
	f.recorder.Fallback(op, kind.String())
	return nil
}

// localFailed converts a local store failure into a UserError.
func (f *fallback) localFailed(op string, err error) error {
	var ue *domain.UserError
	if errors.As(err, &ue) {
		return ue
	}
	f.log.Error().Err(err).Str("op", op).Str("backend", "local").Msg("local store failure")
	return domain.ErrInternal
}

// run executes one façade call under the policy.
func run[T any](
	ctx context.Context,
	f *fallback,
	op string,
	notFound *domain.UserError,
	remote func(context.Context) (T, error),
	local func() (T, error),
) (T, error) {
	var zero T
	if f.policy.Decide(ctx) == UseRemote {
		v, err := remote(ctx)
		if err == nil {
			return v, nil
		}
		if uerr := f.surface(op, err, notFound); uerr != nil {
			return zero, uerr
		}
	}
	v, err := local()
	if err != nil {
		return zero, f.localFailed(op, err)
	}
	return v, nil
}

// userErrorFromRemote maps a backend validation failure onto a short,
// user-facing error.
func userErrorFromRemote(err error) error {
	var re *ports.RemoteError
	if !errors.As(err, &re) {
		return domain.ErrInvalidInput
	}
	msg := strings.ToLower(re.Message)
	switch {
	case re.Code == "invalid_credentials" || re.Code == "invalid_grant" ||
		strings.Contains(msg, "invalid login credentials"):
		return domain.ErrInvalidCredentials
	case re.Code == "email_not_confirmed":
		return domain.NewUserError(domain.CodeInvalidCredentials, "email not confirmed yet, check your inbox")
	case re.Code == "user_already_exists" || re.Code == "email_exists" || re.Code == "23505" ||
		strings.Contains(msg, "already registered"):
		return domain.NewUserError(domain.CodeAlreadyExists, "this email is already in use, try signing in")
	case re.Code == "42501" || strings.Contains(msg, "row-level security"):
		return domain.ErrForbidden
	case re.Message != "":
		return domain.NewUserError(domain.CodeInvalidInput, re.Message)
	}
	return domain.ErrInvalidInput
}
