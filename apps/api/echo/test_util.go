package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	"github.com/labstack/echo/v4"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/openlab-uninorte/aula/core"
	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
	emailsvc "github.com/openlab-uninorte/aula/services/email"
	"github.com/openlab-uninorte/aula/storage/database/dummy"
)

type testEnv struct {
	server *Server
	db     *dummy.DB
	logger *testLogger

	usrRepo    user.Repository
	courseRepo course.Repository
	groupRepo  group.Repository
	actRepo    activity.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core.Conf.TestMode = true

	db := dummy.NewDB()
	env := &testEnv{
		db:         db,
		logger:     new(testLogger),
		usrRepo:    dummy.NewUserRepository(db),
		courseRepo: dummy.NewCourseRepository(db),
		groupRepo:  dummy.NewGroupRepository(db),
		actRepo:    dummy.NewActivityRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	env.server = NewServer(ServerDeps{
		Logger:      env.logger,
		UserSvc:     user.NewService(env.usrRepo, mailSvc),
		CourseSvc:   course.NewService(env.courseRepo),
		GroupSvc:    group.NewService(env.groupRepo),
		ActivitySvc: activity.NewService(env.actRepo, mailSvc, env.logger),
		Validate:    validate,
		Translator:  translator,
	})
	return env
}

// testLogger records warnings and errors so tests can assert on them.
type testLogger struct {
	mu       sync.Mutex
	warnings []string
	errs     []string
}

func (l *testLogger) Enable(bool)                  {}
func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{})  {}

func (l *testLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *testLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *testLogger) Fatal(string, ...interface{}) {}

func (l *testLogger) warned() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

func (env *testEnv) createUser(t *testing.T, name, uname, email string, roles []string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  true,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := env.usrRepo.CreateUser(context.TODO(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}
