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

	echoapi "github.com/openlab-uninorte/aula/apps/api/echo"
	"github.com/openlab-uninorte/aula/core"
	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
	emailsvc "github.com/openlab-uninorte/aula/services/email"
	logsvc "github.com/openlab-uninorte/aula/services/logger"
	"github.com/openlab-uninorte/aula/storage/database/dummy"
	"github.com/openlab-uninorte/aula/storage/roble"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	storeLogger.Enable(!conf.Debug)

	// set up repositories: Roble when a project is configured, in-memory otherwise
	var (
		userRepo     user.Repository
		courseRepo   course.Repository
		groupRepo    group.Repository
		activityRepo activity.Repository
	)
	if conf.Roble.ProjectID != "" {
		client := roble.NewClient(conf.Roble, storeLogger)
		userRepo = roble.NewUserRepository(client)
		courseRepo = roble.NewCourseRepository(client)
		groupRepo = roble.NewGroupRepository(client)
		activityRepo = roble.NewActivityRepository(client)
	} else {
		logger.Warn("no Roble project configured; using in-memory storage")
		db := dummy.NewDB()
		userRepo = dummy.NewUserRepository(db)
		courseRepo = dummy.NewCourseRepository(db)
		groupRepo = dummy.NewGroupRepository(db)
		activityRepo = dummy.NewActivityRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(userRepo, mailSvc)
	courseSvc := course.NewService(courseRepo)
	groupSvc := group.NewService(groupRepo)
	activitySvc := activity.NewService(activityRepo, mailSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Logger:      logger,
			UserSvc:     usrSvc,
			CourseSvc:   courseSvc,
			GroupSvc:    groupSvc,
			ActivitySvc: activitySvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
