package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"heavymetal/auth"
	"heavymetal/middleware"
	"heavymetal/store"
	"heavymetal/types"
)

// testServer wires the handlers against a real store and token service, with
// the same middleware chain the server uses
type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{0x42}, 32), auth.DefaultTokenTTL)
	require.NoError(t, err)

	authHandler := NewAuthHandler(st, tokens)
	songHandler := NewSongHandler(st)

	r := gin.New()
	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/register", authHandler.Register)

	account := authGroup.Group("")
	account.Use(middleware.RequireAuth(tokens, st), middleware.RequireActive())
	account.GET("/profile", authHandler.Profile)
	account.GET("/superuser", middleware.RequireSuperuser(), authHandler.Superuser)

	songs := api.Group("/songs")
	songs.Use(middleware.RequireAuth(tokens, st), middleware.RequireActive())
	songs.GET("/list", songHandler.List)
	songs.GET("/info/:id", songHandler.Info)
	songs.GET("/search/:kind/:query", songHandler.Search)
	songs.GET("/serve/:id", songHandler.Serve)
	songs.GET("/stream/:id", songHandler.Stream)

	return &testServer{t: t, router: r, store: st, tokens: tokens}
}

// request performs an HTTP request against the router. A non-empty token is
// sent as a bearer Authorization header.
func (ts *testServer) request(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path, token string, headers map[string]string) *httptest.ResponseRecorder {
	ts.t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// seedUser creates an account directly in the store and returns a valid token
// for it
func (ts *testServer) seedUser(name, password string, active, superuser bool) string {
	ts.t.Helper()

	hashed, err := auth.HashPassword(password)
	require.NoError(ts.t, err)

	require.NoError(ts.t, ts.store.CreateUser(types.User{
		UUID:           uuid.New().String(),
		Name:           name,
		HashedPassword: hashed,
		IsActive:       active,
		IsSuperuser:    superuser,
	}))

	token, err := ts.tokens.Issue(name)
	require.NoError(ts.t, err)
	return token
}

// seedTrack commits one track with the given tags pointing at audioPath
func (ts *testServer) seedTrack(name, artist, album, genre, audioPath string) string {
	ts.t.Helper()

	batch, err := ts.store.Begin()
	require.NoError(ts.t, err)

	audioID := uuid.New().String()
	require.NoError(ts.t, batch.InsertAudio(types.AudioFile{
		UUID: audioID,
		Name: filepath.Base(audioPath),
		Path: audioPath,
	}))

	track := types.Track{UUID: uuid.New().String(), Name: name, Genre: genre, Audio: audioID}
	if artist != "" {
		track.Artist = uuid.New().String()
		require.NoError(ts.t, batch.InsertArtist(types.Artist{UUID: track.Artist, Name: artist}))
	}
	if album != "" {
		track.Album = uuid.New().String()
		require.NoError(ts.t, batch.InsertAlbum(types.Album{UUID: track.Album, Name: album}))
	}

	require.NoError(ts.t, batch.InsertTrack(track))
	require.NoError(ts.t, batch.Commit())
	return track.UUID
}

// writeAudio creates an audio file on disk and returns its path
func (ts *testServer) writeAudio(name string, content []byte) string {
	ts.t.Helper()

	path := filepath.Join(ts.t.TempDir(), name)
	require.NoError(ts.t, os.WriteFile(path, content, 0644))
	return path
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
