package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/testutil/mocks"
)

// AuthHandlerTestSuite is the test suite for AuthHandler
type AuthHandlerTestSuite struct {
	suite.Suite
	echo      *echo.Echo
	handler   *AuthHandler
	store     *auth.Store
	logs      *bytes.Buffer
	mockInbox *mocks.MockInbox
	mockSaver *mocks.MockCredentialSaver
}

// SetupTest runs before each test
func (s *AuthHandlerTestSuite) SetupTest() {
	s.echo = newTestEcho(s.T())
	s.store = auth.NewStore()
	s.store.SetAuthenticationRequired(true)
	s.logs = &bytes.Buffer{}
	s.mockInbox = new(mocks.MockInbox)
	s.mockSaver = new(mocks.MockCredentialSaver)
	s.handler = NewAuthHandler(s.mockInbox, s.store, s.mockSaver, "", logger.NewWithWriter(s.logs, slog.LevelInfo))
}

// TearDownTest runs after each test
func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockInbox.AssertExpectations(s.T())
	s.mockSaver.AssertExpectations(s.T())
}

// TestAuthHandlerTestSuite runs the test suite
func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) postForm(form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

func (s *AuthHandlerTestSuite) TestLoginForm_ShowsStoredError() {
	s.store.SetAuthError(apperrors.MessageInvalidCredentials)

	req := httptest.NewRequest(http.MethodGet, "/login?next=%2F%3Fpage%3D2", nil)
	rec := httptest.NewRecorder()

	err := s.handler.LoginForm(s.echo.NewContext(req, rec))

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), apperrors.MessageInvalidCredentials)
	s.Contains(rec.Body.String(), `value="/?page=2"`)
}

func (s *AuthHandlerTestSuite) TestLogin_Success() {
	creds := models.Credentials{Username: "alice", Password: "secret"}
	s.mockInbox.On("Login", mock.Anything, creds).Return(nil)
	s.mockSaver.On("Save", creds).Return(nil)

	c, rec := s.postForm(url.Values{"username": {" alice "}, "password": {"secret"}, "next": {"/?page=2"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/?page=2", rec.Header().Get(echo.HeaderLocation))
	st := s.store.State()
	s.True(st.IsAuthenticated)
	s.Equal("alice", st.Credentials.Username)
}

func (s *AuthHandlerTestSuite) TestLogin_SaveFailureStillLogsIn() {
	creds := models.Credentials{Username: "alice", Password: "secret"}
	s.mockInbox.On("Login", mock.Anything, creds).Return(nil)
	s.mockSaver.On("Save", creds).Return(errors.New("no keyring"))

	c, rec := s.postForm(url.Values{"username": {"alice"}, "password": {"secret"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.True(s.store.State().IsAuthenticated)
	s.NotContains(s.logs.String(), "secret")
}

func (s *AuthHandlerTestSuite) TestLogin_Rejected() {
	creds := models.Credentials{Username: "alice", Password: "wrong"}
	s.mockInbox.On("Login", mock.Anything, creds).
		Return(apperrors.NewAppError(apperrors.ErrUnauthorized, apperrors.MessageInvalidCredentials, apperrors.CodeUnauthorized))

	c, rec := s.postForm(url.Values{"username": {"alice"}, "password": {"wrong"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), apperrors.MessageInvalidCredentials)
	s.Contains(rec.Body.String(), `value="alice"`)
	s.False(s.store.State().IsAuthenticated)
	s.Equal(apperrors.MessageInvalidCredentials, s.store.State().Error)
	s.Contains(s.logs.String(), "login_failure")
	s.NotContains(s.logs.String(), "wrong")
}

func (s *AuthHandlerTestSuite) TestLogin_BackendDown() {
	creds := models.Credentials{Username: "alice", Password: "secret"}
	s.mockInbox.On("Login", mock.Anything, creds).Return(apperrors.Transport(errors.New("dial tcp: refused")))

	c, rec := s.postForm(url.Values{"username": {"alice"}, "password": {"secret"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Empty(s.store.State().Error)
}

func (s *AuthHandlerTestSuite) TestLogin_MissingFields() {
	c, rec := s.postForm(url.Values{"username": {"alice"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Username and password are required.")
}

func (s *AuthHandlerTestSuite) TestLogin_IgnoresForeignNext() {
	creds := models.Credentials{Username: "alice", Password: "secret"}
	s.mockInbox.On("Login", mock.Anything, creds).Return(nil)
	s.mockSaver.On("Save", creds).Return(nil)

	c, rec := s.postForm(url.Values{"username": {"alice"}, "password": {"secret"}, "next": {"//evil.example.com/"}})

	err := s.handler.Login(c)

	s.NoError(err)
	s.Equal("/", rec.Header().Get(echo.HeaderLocation))
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.store.SetCredentials(models.Credentials{Username: "alice", Password: "secret"})
	s.mockSaver.On("Delete").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()

	err := s.handler.Logout(s.echo.NewContext(req, rec))

	s.NoError(err)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get(echo.HeaderLocation))
	s.False(s.store.State().IsAuthenticated)
	s.Nil(s.store.State().Credentials)
}

func TestSite_SafeNext(t *testing.T) {
	s := site{prefix: "/mail"}

	cases := []struct{ next, want string }{
		{"", "/mail/"},
		{"/mail/?page=2", "/mail/?page=2"},
		{"/mail/emails/1", "/mail/emails/1"},
		{"/other", "/mail/"},
		{"//evil.example.com/mail", "/mail/"},
		{"https://evil.example.com", "/mail/"},
		{"/mail\\..\\x", "/mail/"},
	}
	for _, tc := range cases {
		if got := s.safeNext(tc.next); got != tc.want {
			t.Errorf("safeNext(%q) = %q, want %q", tc.next, got, tc.want)
		}
	}
}
