package echoapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/attendance"
)

const sessionOpTimeout = 5 * time.Second

// sessionManager tracks the brokers of the sessions this server has open,
// one per session key. A second open on the same key is a no-op that
// returns the running broker.
type sessionManager struct {
	store  attendance.CodeStore
	conf   *core.Config
	logger core.Logger

	mu      sync.Mutex
	brokers map[string]*attendance.Broker
}

func newSessionManager(store attendance.CodeStore, conf *core.Config, logger core.Logger) *sessionManager {
	return &sessionManager{
		store:   store,
		conf:    conf,
		logger:  logger,
		brokers: make(map[string]*attendance.Broker),
	}
}

func (sm *sessionManager) open(ctx context.Context, key attendance.SessionKey) (*attendance.Broker, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if b, ok := sm.brokers[key.String()]; ok {
		return b, nil
	}
	b, err := attendance.OpenSession(ctx, sm.store, key, sm.conf.Attendance.Marker, sm.logger)
	if err != nil {
		return nil, err
	}
	sm.brokers[key.String()] = b
	return b, nil
}

func (sm *sessionManager) get(key attendance.SessionKey) (*attendance.Broker, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	b, ok := sm.brokers[key.String()]
	return b, ok
}

func (sm *sessionManager) close(ctx context.Context, key attendance.SessionKey) error {
	sm.mu.Lock()
	b, ok := sm.brokers[key.String()]
	delete(sm.brokers, key.String())
	sm.mu.Unlock()

	if !ok {
		return attendance.ErrSessionClosed
	}
	return b.Close(ctx)
}

func (sm *sessionManager) closeAll(ctx context.Context) {
	sm.mu.Lock()
	brokers := sm.brokers
	sm.brokers = make(map[string]*attendance.Broker)
	sm.mu.Unlock()

	for _, b := range brokers {
		if err := b.Close(ctx); err != nil {
			sm.logger.Error("closing attendance session", err)
		}
	}
}

type attendanceApi struct {
	verifier *attendance.Verifier
	sessions *sessionManager
	validate *validator.Validate
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	verifier *attendance.Verifier,
	sessions *sessionManager,
	validate *validator.Validate,
) {
	api := attendanceApi{verifier: verifier, sessions: sessions, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.POST("/scan", api.scan)

	sg := ag.Group("/sessions", teacherMiddleware())
	sg.POST("", api.openSession)
	sg.POST("/refresh", api.refreshSession, sessionKeyMiddleware(sessions))
	sg.GET("/events", api.sessionEvents, sessionKeyMiddleware(sessions))
	sg.DELETE("", api.closeSession)
}

// sessionKeyMiddleware resolves the session key from query params and loads
// the matching broker into the context.
func sessionKeyMiddleware(sessions *sessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := attendance.SessionKey{
				Year:      core.CleanString(ctx.QueryParam("year")),
				Term:      core.CleanString(ctx.QueryParam("term")),
				SubjectID: core.CleanString(ctx.QueryParam("subject_id")),
			}
			if !attendance.ValidSessionKey(key) {
				return core.NewValidationError(errors.New("invalid session key"))
			}
			b, ok := sessions.get(key)
			if !ok {
				return attendance.ErrSessionClosed
			}
			ctx.Set("broker", b)
			return next(ctx)
		}
	}
}

func contextBroker(ctx echo.Context) (*attendance.Broker, error) {
	if b, ok := ctx.Get("broker").(*attendance.Broker); ok {
		return b, nil
	}
	return nil, attendance.ErrSessionClosed
}

// Handlers

func (api *attendanceApi) scan(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data ScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScanRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.verifier.Scan(ctx.Request().Context(), claims.Subject, data.Payload)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newEventResponse(evt))
}

func (api *attendanceApi) openSession(ctx echo.Context) error {
	var data OpenSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OpenSessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx.Request().Context(), sessionOpTimeout)
	defer cancel()
	b, err := api.sessions.open(opCtx, data.sessionKey())
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	return ctx.JSON(http.StatusCreated, SessionResponse{Key: b.Key().String(), Payload: b.Payload()})
}

func (api *attendanceApi) refreshSession(ctx echo.Context) error {
	b, err := contextBroker(ctx)
	if err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(ctx.Request().Context(), sessionOpTimeout)
	defer cancel()
	if _, err := b.Refresh(opCtx); err != nil {
		return errors.Wrap(err, "refreshing code")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{Key: b.Key().String(), Payload: b.Payload()})
}

// sessionEvents drains the events buffered since the last poll.
func (api *attendanceApi) sessionEvents(ctx echo.Context) error {
	b, err := contextBroker(ctx)
	if err != nil {
		return err
	}

	events := make([]EventResponse, 0)
	for {
		select {
		case evt, ok := <-b.Events():
			if !ok {
				return ctx.JSON(http.StatusOK, events)
			}
			events = append(events, newEventResponse(evt))
		default:
			return ctx.JSON(http.StatusOK, events)
		}
	}
}

func (api *attendanceApi) closeSession(ctx echo.Context) error {
	key := attendance.SessionKey{
		Year:      core.CleanString(ctx.QueryParam("year")),
		Term:      core.CleanString(ctx.QueryParam("term")),
		SubjectID: core.CleanString(ctx.QueryParam("subject_id")),
	}
	if !attendance.ValidSessionKey(key) {
		return core.NewValidationError(errors.New("invalid session key"))
	}

	opCtx, cancel := context.WithTimeout(ctx.Request().Context(), sessionOpTimeout)
	defer cancel()
	if err := api.sessions.close(opCtx, key); err != nil {
		return err
	}
	return ctx.JSON(http.StatusNoContent, nil)
}
