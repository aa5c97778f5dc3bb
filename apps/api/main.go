package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/Ma114119/Combits-2025/apps/api/echo"
	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
	"github.com/Ma114119/Combits-2025/core/notification"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
	emailsvc "github.com/Ma114119/Combits-2025/services/email"
	logsvc "github.com/Ma114119/Combits-2025/services/logger"
	"github.com/Ma114119/Combits-2025/storage/database"
	sqlxrepos "github.com/Ma114119/Combits-2025/storage/database/sqlx"
	"github.com/Ma114119/Combits-2025/storage/files"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	store, err := files.NewDiskStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}

	coreDB := database.Wrap(db)
	usrRepo := sqlxrepos.NewUserRepository(db)
	grpRepo := sqlxrepos.NewGroupRepository(db)
	memberRepo := sqlxrepos.NewMembershipRepository(db)
	sessRepo := sqlxrepos.NewSessionRepository(db)
	msgRepo := sqlxrepos.NewMessageRepository(db)
	fileRepo := sqlxrepos.NewFileRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)

	notifSvc := notification.NewService(notifRepo)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	grpSvc := group.NewService(coreDB, grpRepo, memberRepo)
	memberSvc := membership.NewService(coreDB, memberRepo, grpRepo, notifSvc)
	sessSvc := session.NewService(sessRepo, grpRepo)
	msgSvc := message.NewService(msgRepo, grpRepo, memberRepo)
	fileSvc := file.NewService(fileRepo, store, grpRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			GroupSvc:   grpSvc,
			MemberSvc:  memberSvc,
			SessionSvc: sessSvc,
			MessageSvc: msgSvc,
			FileSvc:    fileSvc,
			NotifSvc:   notifSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
