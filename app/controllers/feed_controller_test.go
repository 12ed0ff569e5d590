package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"feedboard/app/middleware"
	"feedboard/app/models"
	"feedboard/app/realtime"
	"feedboard/app/repositories/mock"
	"feedboard/app/services"
	"feedboard/app/storage"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	controller *FeedController
	posts      *mock.PostRepository
	users      *mock.UserRepository
	blobs      storage.BlobStore
	router     *mux.Router
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	posts := mock.NewPostRepository()
	users := mock.NewUserRepository()
	blobs, err := storage.NewDiskStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	hub := realtime.NewHub(zerolog.Nop())
	feed := services.NewFeedService(posts, users, blobs, hub, 2, zerolog.Nop())
	controller := NewFeedController(feed, blobs, zerolog.Nop())

	router := mux.NewRouter()
	router.HandleFunc("/posts", controller.Index).Methods(http.MethodGet)
	router.HandleFunc("/post", controller.Create).Methods(http.MethodPost)
	router.HandleFunc("/post/{id:[0-9]+}", controller.Show).Methods(http.MethodGet)
	router.HandleFunc("/post/{id:[0-9]+}", controller.Update).Methods(http.MethodPut)
	router.HandleFunc("/post/{id:[0-9]+}", controller.Delete).Methods(http.MethodDelete)

	return &controllerFixture{
		controller: controller,
		posts:      posts,
		users:      users,
		blobs:      blobs,
		router:     router,
	}
}

func (f *controllerFixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Email: name + "@example.com", Password: "hashed", Name: name}
	require.NoError(t, f.users.Create(user))
	return user
}

// do runs a request through the router, optionally as an authenticated caller.
func (f *controllerFixture) do(req *http.Request, callerID int) *httptest.ResponseRecorder {
	if callerID != 0 {
		req = req.WithContext(middleware.WithCallerID(req.Context(), callerID))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestFeedControllerCreate(t *testing.T) {
	t.Run("JSON body creates a post", func(t *testing.T) {
		f := newControllerFixture(t)
		user := f.addUser(t, "alice")

		req := httptest.NewRequest(http.MethodPost, "/post", jsonBody(t, map[string]string{
			"title":    "First post",
			"content":  "hello world",
			"imageUrl": "images/pic.png",
		}))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, user.ID)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "post created successfully", body["message"])
		post := body["post"].(map[string]interface{})
		assert.Equal(t, "First post", post["title"])
		creator := post["creator"].(map[string]interface{})
		assert.Equal(t, "alice", creator["name"])
	})

	t.Run("multipart body stores the upload first", func(t *testing.T) {
		f := newControllerFixture(t)
		user := f.addUser(t, "alice")

		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		require.NoError(t, form.WriteField("title", "Photo post"))
		require.NoError(t, form.WriteField("content", "look at this"))
		part, err := form.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a png"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/post", &buf)
		req.Header.Set("Content-Type", form.FormDataContentType())
		w := f.do(req, user.ID)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		post := body["post"].(map[string]interface{})
		locator := post["imageUrl"].(string)
		assert.True(t, strings.HasPrefix(locator, "images/"))
		assert.True(t, strings.HasSuffix(locator, ".png"))
	})

	t.Run("missing caller is unauthenticated", func(t *testing.T) {
		f := newControllerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/post", jsonBody(t, map[string]string{
			"title":    "First post",
			"content":  "hello world",
			"imageUrl": "images/pic.png",
		}))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, 0)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("short title is unprocessable with field details", func(t *testing.T) {
		f := newControllerFixture(t)
		user := f.addUser(t, "alice")

		req := httptest.NewRequest(http.MethodPost, "/post", jsonBody(t, map[string]string{
			"title":    "abcd",
			"content":  "hello world",
			"imageUrl": "images/pic.png",
		}))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, user.ID)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body, "data")
	})

	t.Run("malformed JSON is unprocessable", func(t *testing.T) {
		f := newControllerFixture(t)
		user := f.addUser(t, "alice")

		req := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("{nope"))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, user.ID)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestFeedControllerIndex(t *testing.T) {
	f := newControllerFixture(t)
	user := f.addUser(t, "alice")

	feed := services.NewFeedService(f.posts, f.users, f.blobs, realtime.NewHub(zerolog.Nop()), 2, zerolog.Nop())
	for _, title := range []string{"Post one", "Post two", "Post three"} {
		_, err := feed.CreatePost(user.ID, services.PostInput{
			Title: title, Content: "some content", ImageURL: "images/pic.png",
		})
		require.NoError(t, err)
	}

	t.Run("first page has the newest posts and the total", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/posts", nil), user.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(3), body["totalItems"])
		posts := body["posts"].([]interface{})
		require.Len(t, posts, 2)
		first := posts[0].(map[string]interface{})
		assert.Equal(t, "Post three", first["title"])
	})

	t.Run("second page has the remainder", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/posts?page=2", nil), user.ID)

		body := decodeBody(t, w)
		posts := body["posts"].([]interface{})
		require.Len(t, posts, 1)
	})

	t.Run("garbage page falls back to the first", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/posts?page=zero", nil), user.ID)

		body := decodeBody(t, w)
		posts := body["posts"].([]interface{})
		assert.Len(t, posts, 2)
	})
}

func TestFeedControllerShow(t *testing.T) {
	f := newControllerFixture(t)
	user := f.addUser(t, "alice")

	feed := services.NewFeedService(f.posts, f.users, f.blobs, realtime.NewHub(zerolog.Nop()), 2, zerolog.Nop())
	created, err := feed.CreatePost(user.ID, services.PostInput{
		Title: "First post", Content: "hello world", ImageURL: "images/pic.png",
	})
	require.NoError(t, err)

	t.Run("existing post is returned", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/post/1", nil), user.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		post := body["post"].(map[string]interface{})
		assert.Equal(t, float64(created.ID), post["id"])
	})

	t.Run("unknown post is not found", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/post/99", nil), user.ID)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFeedControllerUpdate(t *testing.T) {
	f := newControllerFixture(t)
	owner := f.addUser(t, "alice")
	other := f.addUser(t, "bob")

	feed := services.NewFeedService(f.posts, f.users, f.blobs, realtime.NewHub(zerolog.Nop()), 2, zerolog.Nop())
	_, err := feed.CreatePost(owner.ID, services.PostInput{
		Title: "First post", Content: "hello world", ImageURL: "images/pic.png",
	})
	require.NoError(t, err)

	t.Run("owner edits succeed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/post/1", jsonBody(t, map[string]string{
			"title":   "Edited post",
			"content": "fresh content",
		}))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, owner.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		post := body["post"].(map[string]interface{})
		assert.Equal(t, "Edited post", post["title"])
		assert.Equal(t, "images/pic.png", post["imageUrl"])
	})

	t.Run("non-owner edits are forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/post/1", jsonBody(t, map[string]string{
			"title":   "Hijacked post",
			"content": "fresh content",
		}))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req, other.ID)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestFeedControllerDelete(t *testing.T) {
	f := newControllerFixture(t)
	owner := f.addUser(t, "alice")
	other := f.addUser(t, "bob")

	feed := services.NewFeedService(f.posts, f.users, f.blobs, realtime.NewHub(zerolog.Nop()), 2, zerolog.Nop())
	created, err := feed.CreatePost(owner.ID, services.PostInput{
		Title: "First post", Content: "hello world", ImageURL: "images/pic.png",
	})
	require.NoError(t, err)

	t.Run("non-owner deletes are forbidden", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodDelete, "/post/1", nil), other.ID)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner deletes succeed", func(t *testing.T) {
		w := f.do(httptest.NewRequest(http.MethodDelete, "/post/1", nil), owner.ID)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(created.ID), body["post"])

		_, err := f.posts.GetByID(created.ID)
		assert.Error(t, err)
	})
}
