package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goconsole/internal/api"
	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	s, err := New(
		&config.MockConfig{Database: ""},
		&config.JWTConfig{Secret: "test-secret", Issuer: "test", Expire: 3600},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

// envelope 测试用响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest 发起请求并解析统一响应
func doRequest(t *testing.T, s *Server, method, path, token string, body interface{}) *envelope {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return &env
}

// login 登录并返回登录结果
func login(t *testing.T, s *Server, username, password string) (*envelope, *api.LoginResult) {
	env := doRequest(t, s, http.MethodPost, "/api/auth/login", "", &api.LoginParams{
		Username: username,
		Password: password,
	})
	if env.Code != response.CodeSuccess {
		return env, nil
	}

	var result api.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return env, &result
}

func TestLoginAdmin(t *testing.T) {
	s := newTestServer(t)

	env, result := login(t, s, "admin", "123456")
	require.Equal(t, response.CodeSuccess, env.Code)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, "admin", result.User.Username)
	assert.Equal(t, []string{"admin"}, result.User.RoleCodes())
	assert.Equal(t, []string{"*:*:*"}, result.User.Permissions)
}

func TestLoginTestAdminPermissions(t *testing.T) {
	s := newTestServer(t)

	env, result := login(t, s, "test_admin", "123456")
	require.Equal(t, response.CodeSuccess, env.Code)

	assert.Equal(t, []string{"test_admin"}, result.User.RoleCodes())
	assert.Equal(t, []string{"sys:test:*"}, result.User.Permissions)
}

func TestLoginFailureKinds(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
		code     int
	}{
		{"密码错误", "admin", "wrong", response.CodeInvalidCredential},
		{"用户不存在", "nobody", "123456", response.CodeInvalidCredential},
		{"用户被禁用", "disabled_user", "123456", response.CodeAccountDisabled},
		{"用户被锁定", "locked_user", "123456", response.CodeAccountLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := login(t, s, tt.username, tt.password)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestSeedDisabledUserPersisted(t *testing.T) {
	s := newTestServer(t)

	user, err := s.repo.FindUserByUsername(context.Background(), "disabled_user")
	require.NoError(t, err)
	require.NotNil(t, user)

	// 禁用状态落库为0，登录时才能走到禁用分支
	assert.Equal(t, int8(0), user.Status)
}

func TestLoginEmptyParams(t *testing.T) {
	s := newTestServer(t)

	env, _ := login(t, s, "", "")
	assert.Equal(t, response.CodeBadRequest, env.Code)
}

func TestInfo(t *testing.T) {
	s := newTestServer(t)

	_, result := login(t, s, "test_admin", "123456")
	require.NotNil(t, result)

	env := doRequest(t, s, http.MethodGet, "/api/auth/info", result.Token, nil)
	require.Equal(t, response.CodeSuccess, env.Code)

	var info api.UserInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "test_admin", info.Username)
	assert.Equal(t, []string{"sys:test:*"}, info.Permissions)
	assert.NotEmpty(t, info.LastLoginTime)
}

func TestInfoWithoutToken(t *testing.T) {
	s := newTestServer(t)

	env := doRequest(t, s, http.MethodGet, "/api/auth/info", "", nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestInfoWithInvalidToken(t *testing.T) {
	s := newTestServer(t)

	env := doRequest(t, s, http.MethodGet, "/api/auth/info", "not-a-token", nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)

	_, result := login(t, s, "admin", "123456")
	require.NotNil(t, result)

	env := doRequest(t, s, http.MethodPost, "/api/auth/logout", result.Token, nil)
	require.Equal(t, response.CodeSuccess, env.Code)

	// 已登出的凭证不能再获取用户信息
	env = doRequest(t, s, http.MethodGet, "/api/auth/info", result.Token, nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestPermissionTree(t *testing.T) {
	s := newTestServer(t)

	_, result := login(t, s, "admin", "123456")
	require.NotNil(t, result)

	env := doRequest(t, s, http.MethodGet, "/api/permission/tree", result.Token, nil)
	require.Equal(t, response.CodeSuccess, env.Code)

	var tree []*api.PermissionNode
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	require.Len(t, tree, 1)

	root := tree[0]
	assert.Equal(t, "system", root.PermissionCode)
	assert.Equal(t, "menu", root.Type)
	require.NotEmpty(t, root.Children)

	// 菜单下挂按钮
	userMenu := root.Children[0]
	assert.Equal(t, "system:user", userMenu.PermissionCode)
	require.NotEmpty(t, userMenu.Children)
	assert.Equal(t, "button", userMenu.Children[0].Type)
}

func TestPermissionTreeRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	env := doRequest(t, s, http.MethodGet, "/api/permission/tree", "", nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}
