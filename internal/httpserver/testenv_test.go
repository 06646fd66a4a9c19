package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/docflow/internal/es"
	authmw "github.com/Skotchmaster/docflow/internal/middleware/auth"
	"github.com/Skotchmaster/docflow/internal/models"
	"github.com/Skotchmaster/docflow/internal/mykafka"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/service"
	"github.com/Skotchmaster/docflow/internal/storage"
	"github.com/Skotchmaster/docflow/internal/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Issuer *token.Issuer
	Files  *storage.FileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RevokedToken{}, &models.Document{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := repo.New(db)
	issuer := token.NewIssuer([]byte("test_secret"), 15*time.Minute)
	prod := mykafka.NewProducer(nil)
	index := &es.DocumentIndex{Index: "documents"}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:     &AuthHTTP{Svc: &service.AuthService{Repo: r, Issuer: issuer, Producer: prod}},
		UserHandler:     &UsersHTTP{Svc: &service.UserService{Repo: r}},
		DocumentHandler: &DocumentsHTTP{Svc: &service.DocumentService{Repo: r, Files: files, Index: index, Producer: prod}},
		Gate:            authmw.NewGate(issuer, r),
	})

	return &testEnv{T: t, E: e, Repo: r, Issuer: issuer, Files: files}
}

func (env *testEnv) doJSON(method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doUpload(path, field, filename string, content []byte, fields map[string]string, bearer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(env.T, err)
	_, err = part.Write(content)
	require.NoError(env.T, err)
	for name, value := range fields {
		require.NoError(env.T, w.WriteField(name, value))
	}
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates the account over HTTP and returns a live token.
func (env *testEnv) registerAndLogin(email, password string, role models.Role) string {
	payload := map[string]string{"email": email, "password": password, "role": string(role)}
	rec := env.doJSON(http.MethodPost, "/auth/register", payload, "")
	require.Equal(env.T, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}
