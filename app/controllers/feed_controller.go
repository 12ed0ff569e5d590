package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"feedboard/app/apperr"
	"feedboard/app/middleware"
	"feedboard/app/services"
	"feedboard/app/storage"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 10 << 20

// FeedController handles HTTP requests for posts
type FeedController struct {
	feed  *services.FeedService
	blobs storage.BlobStore
	log   zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(feed *services.FeedService, blobs storage.BlobStore, log zerolog.Logger) *FeedController {
	return &FeedController{feed: feed, blobs: blobs, log: log}
}

// Index handles listing posts, most recent first
func (fc *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	posts, total, err := fc.feed.ListPosts(page)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	fc.sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "fetched posts successfully",
		"posts":      posts,
		"totalItems": total,
	})
}

// Show handles fetching a single post
func (fc *FeedController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := fc.postID(w, r)
	if !ok {
		return
	}

	post, err := fc.feed.GetPost(id)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	fc.sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post fetched",
		"post":    post,
	})
}

// Create handles creating a new post. Multipart requests carry the image
// file, which lands in the blob store before the pipeline runs; JSON
// requests carry an already-saved locator.
func (fc *FeedController) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := fc.caller(w, r)
	if !ok {
		return
	}

	input, err := fc.readPostInput(r)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	post, err := fc.feed.CreatePost(callerID, input)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	fc.sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "post created successfully",
		"post":    post,
		"creator": post.Creator,
	})
}

// Update handles editing an existing post
func (fc *FeedController) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := fc.caller(w, r)
	if !ok {
		return
	}
	id, ok := fc.postID(w, r)
	if !ok {
		return
	}

	input, err := fc.readPostInput(r)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	post, err := fc.feed.UpdatePost(callerID, id, input)
	if err != nil {
		fc.sendError(w, err)
		return
	}

	fc.sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post updated",
		"post":    post,
	})
}

// Delete handles deleting a post
func (fc *FeedController) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := fc.caller(w, r)
	if !ok {
		return
	}
	id, ok := fc.postID(w, r)
	if !ok {
		return
	}

	if err := fc.feed.DeletePost(callerID, id); err != nil {
		fc.sendError(w, err)
		return
	}

	fc.sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post deleted",
		"post":    id,
	})
}

// readPostInput decodes the post fields from either a multipart form or a
// JSON body. A multipart "image" file is saved to the blob store and its
// locator adopted; the "image" form field passes an existing locator
// through on update.
func (fc *FeedController) readPostInput(r *http.Request) (services.PostInput, error) {
	var input services.PostInput

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return input, apperr.NewValidation("could not parse upload form")
		}
		input.Title = r.FormValue("title")
		input.Content = r.FormValue("content")
		input.ImageURL = r.FormValue("image")

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return input, apperr.Wrap(apperr.Persistence, "could not read upload", err)
			}
			locator, err := fc.blobs.Save(data, filepath.Ext(header.Filename))
			if err != nil {
				return input, apperr.Wrap(apperr.Persistence, "could not store upload", err)
			}
			input.ImageURL = locator
		}
		return input, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, apperr.NewValidation("invalid JSON body")
	}
	return input, nil
}

func (fc *FeedController) caller(w http.ResponseWriter, r *http.Request) (int, bool) {
	callerID, ok := middleware.CallerID(r.Context())
	if !ok {
		fc.sendError(w, apperr.New(apperr.Auth, "not authenticated"))
		return 0, false
	}
	return callerID, true
}

func (fc *FeedController) postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		fc.sendError(w, apperr.New(apperr.NotFound, "could not find post"))
		return 0, false
	}
	return id, true
}

func (fc *FeedController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fc.log.Warn().Err(err).Msg("failed to encode response")
	}
}

// sendError maps the error taxonomy to HTTP exactly once
func (fc *FeedController) sendError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		fc.log.Error().Err(err).Msg("request failed")
	}
	payload := map[string]interface{}{"message": err.Error()}
	if data := apperr.Details(err); len(data) > 0 {
		payload["data"] = data
	}
	fc.sendJSON(w, status, payload)
}
