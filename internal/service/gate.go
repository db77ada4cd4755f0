package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
)

const bearerPrefix = "Bearer "

// Outcome is the terminal state of an authentication attempt.
type Outcome int

const (
	// Admit lets the request through with the verified subject.
	Admit Outcome = iota
	// Unauthorized short-circuits the request.
	Unauthorized
	// InternalError means the gate could not decide because storage failed.
	InternalError
)

func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// Decide maps an Authenticate error onto its Outcome.
func Decide(err error) Outcome {
	switch {
	case err == nil:
		return Admit
	case errors.Is(err, model.ErrInternal):
		return InternalError
	case errors.Is(err, model.ErrMissingAuthorization),
		errors.Is(err, model.ErrInvalidAuthorization),
		errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrSessionExpired):
		return Unauthorized
	default:
		return InternalError
	}
}

// Gate admits a request only if it carries a validly signed token that is
// still the subject's registered session.
type Gate struct {
	tokens       model.TokenCodec
	sessionStore model.SessionStore
	recorder     Recorder
	logger       *logger.Logger
	now          func() time.Time
}

func NewGate(tokens model.TokenCodec, sessionStore model.SessionStore, recorder Recorder, logger *logger.Logger) *Gate {
	return &Gate{
		tokens:       tokens,
		sessionStore: sessionStore,
		recorder:     orNoop(recorder),
		logger:       logger,
		now:          time.Now,
	}
}

// Authenticate checks an Authorization header value. On success it returns the token's claims.
func (g *Gate) Authenticate(ctx context.Context, header string) (model.Claims, error) {
	claims, err := g.authenticate(ctx, header)
	if err != nil {
		g.reject(err, claims.Subject)
		return model.Claims{}, err
	}
	return claims, nil
}

func (g *Gate) authenticate(ctx context.Context, header string) (model.Claims, error) {
	if header == "" {
		return model.Claims{}, model.ErrMissingAuthorization
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return model.Claims{}, model.ErrInvalidAuthorization
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return model.Claims{}, model.ErrInvalidAuthorization
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		if !errors.Is(err, model.ErrTokenInvalid) {
			err = model.NewTokenError(model.TokenMalformed, err)
		}
		return model.Claims{}, err
	}

	err = g.sessionStore.Validate(ctx, claims.Subject, token, g.now())
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrSessionExpired):
		return model.Claims{Subject: claims.Subject}, err
	default:
		return model.Claims{Subject: claims.Subject}, fmt.Errorf("%w: session lookup: %w", model.ErrInternal, err)
	}
}

func (g *Gate) reject(err error, subject string) {
	reason := rejectionReason(err)
	g.recorder.AuthRejected(reason)

	if Decide(err) == InternalError {
		g.logger.Error("Auth gate: session lookup failed",
			"username", subject,
			"error", err.Error())
		return
	}

	g.logger.Info("Auth gate: request rejected",
		"reason", reason,
		"username", subject)
}

func rejectionReason(err error) string {
	if reason, ok := model.TokenReason(err); ok {
		return "token_" + string(reason)
	}
	switch {
	case errors.Is(err, model.ErrMissingAuthorization):
		return "missing_header"
	case errors.Is(err, model.ErrInvalidAuthorization):
		return "invalid_header"
	case errors.Is(err, model.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, model.ErrSessionExpired):
		return "session_expired"
	default:
		return "internal"
	}
}
