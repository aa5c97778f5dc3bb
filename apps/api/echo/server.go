package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
	"github.com/Ma114119/Combits-2025/core/notification"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		GroupSvc   *group.Service
		MemberSvc  *membership.Service
		SessionSvc *session.Service
		MessageSvc *message.Service
		FileSvc    *file.Service
		NotifSvc   *notification.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	// uploaded bytes are served straight off the disk store
	s.app.Static(conf.Uploads.URLPrefix, conf.Uploads.Dir)

	api := s.app.Group("/api")
	api.GET("/health", health)

	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.deps.UserSvc, s.deps.Validate)
	registerGroupAPI(api, jwt, s.deps.GroupSvc, s.deps.Validate)
	registerMembershipAPI(api, jwt, s.deps.MemberSvc, s.deps.Validate)
	registerSessionAPI(api, jwt, s.deps.SessionSvc, s.deps.MemberSvc, s.deps.Validate)
	registerRSVPAPI(api, jwt, s.deps.SessionSvc, s.deps.Validate)
	registerFileAPI(api, jwt, s.deps.FileSvc, s.deps.MemberSvc, s.deps.Validate)
	registerMessageAPI(api, jwt, s.deps.MessageSvc, s.deps.Validate)
	registerNotificationAPI(api, jwt, s.deps.NotifSvc, s.deps.Validate)
}

func (s *server) Start() {
	s.errChan <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errChan
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownChan
}

// signalShutdown is handed to the error handler so an integrity error can
// trigger a graceful stop.
func (s *server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"message":   "StudyCircle API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
