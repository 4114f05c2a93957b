package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/transport/http/middleware"
	resp "go-gin-social-graph/internal/transport/http/response"
)

// EZ registers typed actions on a router group. authn is chained in front of
// actions that set Auth or Roles.
type EZ struct {
	g     *gin.RouterGroup
	log   *zap.Logger
	authn gin.HandlerFunc
}

func New(g *gin.RouterGroup, log *zap.Logger, authn gin.HandlerFunc) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log, authn: authn}
}

// Group returns an EZ rooted at a sub path of the current group.
func (e EZ) Group(path string) EZ {
	return EZ{g: e.g.Group(path), log: e.log, authn: e.authn}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// AErr is a transport level error carrying its own status.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Action describes one endpoint: I is the bound input, O the data payload.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool
	Roles   []domain.Role // implies Auth
	Status  int           // success status, 200 when zero
	Message string        // success message
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	var chain []gin.HandlerFunc
	if a.Auth || len(a.Roles) > 0 {
		if e.authn == nil {
			panic("ez: " + a.Path + " requires auth but no authenticator is configured")
		}
		chain = append(chain, e.authn)
	}
	if len(a.Roles) > 0 {
		chain = append(chain, middleware.RequireRole(a.Roles...))
	}
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	chain = append(chain, func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				e.Fail(c, &AErr{Code: http.StatusRequestEntityTooLarge, Err: bindErr})
				return
			}
			e.Fail(c, BadRequest("invalid request: "+bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(status, resp.OK(a.Message, out))
	})

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodPost
	}
	e.g.Handle(method, a.Path, chain...)
}

// StatusOf maps err to an HTTP status and the message safe to show the
// caller. Internal failures get the generic message.
func StatusOf(err error) (int, string) {
	var ae *AErr
	switch {
	case errors.As(err, &ae):
		if ae.Code >= http.StatusInternalServerError {
			return ae.Code, ""
		}
		return ae.Code, ae.Error()
	case errors.Is(err, domain.ErrInternal):
		return http.StatusInternalServerError, ""
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrSelfFollow):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, ""
}

// Fail writes the failure envelope for err and logs server side faults.
func (e EZ) Fail(c *gin.Context, err error) {
	status, msg := StatusOf(err)
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(middleware.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, resp.Error(status, msg))
}

// ParamID reads a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, BadRequest("invalid " + name)
	}
	return uint(id), nil
}
