package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/werewolf/internal/action"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/httpapi/handler"
	"github.com/vntrieu/werewolf/internal/interaction"
	"github.com/vntrieu/werewolf/internal/store"
)

type nopSurface struct{}

func (nopSurface) Announce(_ context.Context, channelID string, _ games.Announcement) (games.MessageRef, error) {
	return games.MessageRef{ChannelID: channelID, MessageID: "m"}, nil
}
func (nopSurface) EditAnnouncement(context.Context, games.MessageRef, games.Announcement) error {
	return nil
}
func (nopSurface) DeleteAnnouncement(context.Context, games.MessageRef) error { return nil }
func (nopSurface) SendPrompt(_ context.Context, playerID string, _ games.Prompt) (games.PromptRef, error) {
	return games.PromptRef{PlayerID: playerID, PromptID: "p"}, nil
}
func (nopSurface) EditPrompt(context.Context, games.PromptRef, games.Prompt) error { return nil }

type api struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	m := games.NewManager(games.Options{
		Repository: store.NewMemory(),
		Surface:    nopSurface{},
		Timings:    games.Timings{LobbyCountdown: time.Hour},
	})
	t.Cleanup(m.Shutdown)
	return &api{t: t, router: NewRouter(Deps{
		Manager:     m,
		Router:      interaction.NewRouter(m),
		TokenSecret: []byte("router-test"),
	})}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) session(channelID, userID string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/sessions", "", handler.SessionRequest{ChannelID: channelID, UserID: userID, DisplayName: userID})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp handler.SessionResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func (a *api) openLobby(token, channelID string, body interface{}) int64 {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/channels/"+channelID+"/games", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp handler.LobbyResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.GameID
}

func TestRouter_Healthz(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","active_games":0}`, w.Body.String())
}

func TestRouter_Sessions(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/sessions", "", handler.SessionRequest{ChannelID: "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString("{"))
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.session("c", "u1")
}

func TestRouter_LobbyLifecycle(t *testing.T) {
	a := newAPI(t)
	owner := a.session("chan", "owner")
	guest := a.session("chan", "guest")
	stranger := a.session("elsewhere", "stranger")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/channels/chan/games", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/channels/chan/games", stranger, nil).Code)

	id := a.openLobby(owner, "chan", handler.LobbyRequest{Password: "pw"})
	w := a.do(http.MethodPost, "/api/channels/chan/games", owner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), games.ErrChannelBusy.Error())

	path := "/api/games/" + itoa(id) + "/players"
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, path, guest, handler.LobbyRequest{Password: "nope"}).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, path, guest, handler.LobbyRequest{Password: "pw"}).Code)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, path, guest, handler.LobbyRequest{Password: "pw"}).Code)

	w = a.do(http.MethodGet, "/api/games/"+itoa(id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view games.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, games.StatusSetup, view.Status)
	assert.Len(t, view.Players, 2)

	assert.Equal(t, http.StatusConflict, a.do(http.MethodDelete, path+"/me", owner, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path+"/me", guest, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path+"/me", guest, nil).Code)
}

func TestRouter_GetGameErrors(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/games/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/games/99", "", nil).Code)
}

func TestRouter_Interactions(t *testing.T) {
	a := newAPI(t)
	token := a.session("chan", "u1")

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/interactions", token, handler.InteractionRequest{}).Code)

	w := a.do(http.MethodPost, "/api/interactions", token, handler.InteractionRequest{CustomID: action.New(action.KindRules, 0).Encode()})
	require.Equal(t, http.StatusOK, w.Code)
	var reply interaction.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, games.RulesPrompt().Title, reply.Prompt.Title)

	w = a.do(http.MethodPost, "/api/interactions", token, handler.InteractionRequest{CustomID: action.New(action.KindNewGame, 0).Encode()})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.False(t, reply.Failed, reply.Prompt.Body)

	w = a.do(http.MethodGet, "/healthz", "", nil)
	assert.JSONEq(t, `{"status":"ok","active_games":1}`, w.Body.String())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
