// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/upload"
	"inkwell/internal/weather"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// stubWeatherServer serves canned open-meteo style responses so handler
// tests never reach the network.
func stubWeatherServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch {
		case q.Get("name") != "":
			if q.Get("name") == "Nowhere" {
				w.Write([]byte(`{"results":[]}`))
				return
			}
			w.Write([]byte(`{"results":[{"name":"` + q.Get("name") +
				`","latitude":45.0,"longitude":25.0,"timezone":"Europe/Bucharest"}]}`))
		case q.Get("forecast_hours") != "":
			w.Write([]byte(`{"hourly":{"time":["2026-08-29T10:00"],"temperature_2m":[21.5],` +
				`"relative_humidity_2m":[60],"surface_pressure":[1013.2],"cloud_cover":[40],` +
				`"wind_speed_10m":[12.4],"precipitation_probability":[5],"weather_code":[1]}}`))
		default:
			w.Write([]byte(`{"daily":{"time":["2026-08-29"],"temperature_2m_max":[28.0],` +
				`"temperature_2m_min":[15.0],"precipitation_probability_mean":[10],"weather_code":[3],` +
				`"sunrise":["2026-08-29T06:32"],"sunset":["2026-08-29T20:05"]}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Valkey   *redis.Client
	Renderer *render.Renderer
	Sessions *session.Store
	Users    *store.UserStore
	Posts    *store.PostStore
	Comments *store.CommentStore
	Cities   *store.CityStore
	Weather  *weather.Client
	Uploads  *upload.Store
	Auth     *Auth
	PostsH   *Posts
	CommentsH *Comments
	Profile  *Profile
	WeatherH *Weather
}

// newTestEnv creates a complete test environment with all handler
// dependencies wired to test services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)
	cities := store.NewCityStore(db)

	srv := stubWeatherServer(t)
	wc := weather.NewClient(srv.URL, srv.URL, cities)

	uploads, err := upload.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("upload.NewStore: %v", err)
	}

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		Users:     users,
		Posts:     posts,
		Comments:  comments,
		Cities:    cities,
		Weather:   wc,
		Uploads:   uploads,
		Auth:      NewAuth(renderer, sessions, users, wc),
		PostsH:    NewPosts(renderer, posts, comments),
		CommentsH: NewComments(renderer, posts, comments),
		Profile:   NewProfile(renderer, sessions, users, cities, wc, uploads, "Inkwell"),
		WeatherH:  NewWeather(renderer, wc),
	}
}

// createUser inserts a user and registers cleanup.
func (env *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	env.DB.Exec("DELETE FROM users WHERE username = $1", username)
	user, err := env.Users.Create(username, username+"@example.com", "hunter2", role, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user
}

// createPost inserts a post and registers cleanup.
func (env *testEnv) createPost(t *testing.T, authorID int64, title, content string) *models.Post {
	t.Helper()

	post, err := env.Posts.Create(title, content, authorID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID)
	})
	return post
}

// ctxWithUser attaches an authenticated user the way LoadUser does.
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, middleware.UserKey, user)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// postForm builds a form POST request.
func postForm(target string, form map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// hasSessionCookie reports whether a session cookie was set in the response.
func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

// flashCookieValue returns the raw flash cookie value, if any.
func flashCookieValue(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "iw_flash" {
			return c.Value
		}
	}
	return ""
}
