package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
	"github.com/Ma114119/Combits-2025/core/notification"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
	emailsvc "github.com/Ma114119/Combits-2025/services/email"
	"github.com/Ma114119/Combits-2025/storage/database/inmem"
	"github.com/Ma114119/Combits-2025/storage/files"
)

// testEnv wires the whole app on the in-memory store for handler tests.
type testEnv struct {
	server Server
	db     *inmem.DB
	store  *files.MemStorage

	usrSvc    *user.Service
	grpSvc    *group.Service
	memberSvc *membership.Service
	sessSvc   *session.Service
	msgSvc    *message.Service
	fileSvc   *file.Service
	notifSvc  *notification.Service
}

type testLogger struct{}

var _ core.Logger = (*testLogger)(nil)

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true

	db := inmem.NewDB()
	usrRepo := inmem.NewUserRepository(db)
	grpRepo := inmem.NewGroupRepository(db)
	memberRepo := inmem.NewMembershipRepository(db)
	sessRepo := inmem.NewSessionRepository(db)
	msgRepo := inmem.NewMessageRepository(db)
	fileRepo := inmem.NewFileRepository(db)
	notifRepo := inmem.NewNotificationRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	store := files.NewMemStorage(conf.Uploads.URLPrefix)

	env := &testEnv{
		db:       db,
		store:    store,
		notifSvc: notification.NewService(notifRepo),
		usrSvc:   user.NewService(usrRepo, mailSvc, conf),
		grpSvc:   group.NewService(db, grpRepo, memberRepo),
		sessSvc:  session.NewService(sessRepo, grpRepo),
		msgSvc:   message.NewService(msgRepo, grpRepo, memberRepo),
		fileSvc:  file.NewService(fileRepo, store, grpRepo),
	}
	env.memberSvc = membership.NewService(db, memberRepo, grpRepo, env.notifSvc)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	env.server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testLogger{},
		UserSvc:    env.usrSvc,
		GroupSvc:   env.grpSvc,
		MemberSvc:  env.memberSvc,
		SessionSvc: env.sessSvc,
		MessageSvc: env.msgSvc,
		FileSvc:    env.fileSvc,
		NotifSvc:   env.notifSvc,
		Validate:   validate,
		Translator: translator,
	})
	return env
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Register(context.Background(), user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createGroup(t *testing.T, creator user.User, name string, capacity int, groupType string) group.Group {
	t.Helper()
	grp, err := env.grpSvc.Create(context.Background(), creator.ID, group.NewGroup{
		Name:        name,
		CourseName:  "Operating Systems",
		MaxCapacity: capacity,
		GroupType:   groupType,
	})
	if err != nil {
		t.Fatalf("createGroup() failed: %v", err)
	}
	return grp
}

func (env *testEnv) join(t *testing.T, usr user.User, groupID int) membership.Membership {
	t.Helper()
	m, err := env.memberSvc.Join(context.Background(), usr.ID, groupID)
	if err != nil {
		t.Fatalf("join() failed: %v", err)
	}
	return m
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

// successData wraps the expected payload in the response envelope.
func successData(t *testing.T, data interface{}) []byte {
	t.Helper()
	return marshalObj(t, response{Success: true, Data: data})
}

func successList(t *testing.T, data interface{}, count int) []byte {
	t.Helper()
	return marshalObj(t, response{Success: true, Data: data, Count: &count})
}

func successMessage(t *testing.T, msg string) []byte {
	t.Helper()
	return marshalObj(t, response{Success: true, Message: msg})
}

func errorBody(t *testing.T, err interface{}) []byte {
	t.Helper()
	return marshalObj(t, response{Success: false, Error: err})
}

// decodeBody unmarshals the recorded response body into target.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
