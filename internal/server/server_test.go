package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generation/blogpessoal/internal/handler"
	"github.com/generation/blogpessoal/internal/model"
)

const (
	rootUsuario = "root@root.com"
	rootSenha   = "rootroot"
)

// newTestServer boots the fully wired application — router, services,
// in-memory SQLite, seeded root user — behind an httptest.Server.
// These are the end-to-end scenarios: real HTTP, real basic auth, real
// bcrypt (at the cheap test cost), real UNIQUE index.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	srv, err := New(Config{
		DBPath:      ":memory:",
		JWTSecret:   "test-secret-at-least-16-chars!!",
		BcryptCost:  4,
		RootNome:    "Root",
		RootUsuario: rootUsuario,
		RootSenha:   rootSenha,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// register posts a new user and returns the decoded response body.
func register(t *testing.T, ts *httptest.Server, nome, usuario, senha string) (*model.User, *http.Response) {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"nome":    nome,
		"usuario": usuario,
		"senha":   senha,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/usuarios/cadastrar", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode != http.StatusCreated {
		return nil, resp
	}

	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	return &user, resp
}

// doAs performs a request with basic auth credentials.
func doAs(t *testing.T, method, url, usuario, senha string, body []byte) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if usuario != "" {
		req.SetBasicAuth(usuario, senha)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterUser(t *testing.T) {
	ts := newTestServer(t)

	user, resp := register(t, ts, "João Silva", "joao_silva@email.com.br", "13465278")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, user)
	assert.Equal(t, "João Silva", user.Nome)
	assert.Equal(t, "joao_silva@email.com.br", user.Usuario)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterUser_NoDuplicates(t *testing.T) {
	ts := newTestServer(t)

	_, first := register(t, ts, "Ana Oliveira", "ana_oliveira@email.com.br", "13465278")
	require.Equal(t, http.StatusCreated, first.StatusCode)

	_, second := register(t, ts, "Ana Oliveira", "ana_oliveira@email.com.br", "13465278")
	assert.Equal(t, http.StatusBadRequest, second.StatusCode)

	var errResp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&errResp))
	assert.Equal(t, "duplicate_user", errResp.Error)

	// Exactly one record for that usuario survives.
	resp := doAs(t, http.MethodGet, ts.URL+"/usuarios/all", rootUsuario, rootSenha, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	count := 0
	for _, u := range users {
		if u.Usuario == "ana_oliveira@email.com.br" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)

	created, resp := register(t, ts, "Fernanda Costa", "fernanda_costa@email.com.br", "fernanda123")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	update, err := json.Marshal(map[string]string{
		"id":      created.ID,
		"nome":    "Fernanda Lima",
		"usuario": "fernanda_lima@email.com.br",
		"senha":   "fernanda123",
	})
	require.NoError(t, err)

	updResp := doAs(t, http.MethodPut, ts.URL+"/usuarios/atualizar", rootUsuario, rootSenha, update)
	require.Equal(t, http.StatusOK, updResp.StatusCode)

	var updated model.User
	require.NoError(t, json.NewDecoder(updResp.Body).Decode(&updated))
	assert.Equal(t, "Fernanda Lima", updated.Nome)
	assert.Equal(t, "fernanda_lima@email.com.br", updated.Usuario)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdateUser_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	created, _ := register(t, ts, "Sem Credencial", "sem_credencial@email.com.br", "senha1234")
	require.NotNil(t, created)

	update, _ := json.Marshal(map[string]string{
		"id":      created.ID,
		"nome":    "Renomeado",
		"usuario": "sem_credencial@email.com.br",
	})

	resp := doAs(t, http.MethodPut, ts.URL+"/usuarios/atualizar", "", "", update)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListAllUsers(t *testing.T) {
	ts := newTestServer(t)

	register(t, ts, "Lucas Pereira", "lucas@email.com", "senha123")
	register(t, ts, "Mariana Alves", "mariana@email.com", "senha123")

	resp := doAs(t, http.MethodGet, ts.URL+"/usuarios/all", rootUsuario, rootSenha, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.NotEmpty(t, users)

	// Root plus the two registrations.
	assert.Len(t, users, 3)
}

func TestListAllUsers_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no credentials", func(t *testing.T) {
		resp := doAs(t, http.MethodGet, ts.URL+"/usuarios/all", "", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong senha", func(t *testing.T) {
		resp := doAs(t, http.MethodGet, ts.URL+"/usuarios/all", rootUsuario, "not-the-senha", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"usuario": rootUsuario,
		"senha":   rootSenha,
	})

	resp, err := http.Post(ts.URL+"/usuarios/logar", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Usuario string `json:"usuario"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, rootUsuario, login.Usuario)
	assert.NotEmpty(t, login.Token)
}

func TestGetUserByID(t *testing.T) {
	ts := newTestServer(t)

	created, _ := register(t, ts, "Lucas Pereira", "lucas@email.com", "senha123")
	require.NotNil(t, created)

	resp := doAs(t, http.MethodGet, ts.URL+"/usuarios/"+created.ID, rootUsuario, rootSenha, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, created.ID, got.ID)
}

func TestResponsesNeverContainSenha(t *testing.T) {
	ts := newTestServer(t)

	// Every read surface: registration response and the listing.
	_, resp := register(t, ts, "Paula Souza", "paula@email.com.br", "supersecreta")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	list := doAs(t, http.MethodGet, ts.URL+"/usuarios/all", rootUsuario, rootSenha, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)

	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(list.Body)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "supersecreta")
	assert.NotContains(t, buf.String(), "senha")
	assert.NotContains(t, buf.String(), "$2") // bcrypt hashes stay server-side
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
