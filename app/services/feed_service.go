package services

import (
	"errors"
	"fmt"
	"strings"

	"feedboard/app/apperr"
	"feedboard/app/models"
	"feedboard/app/realtime"
	"feedboard/app/repositories"
	"feedboard/app/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// PostInput is the adapter-independent input shape for create and update.
type PostInput struct {
	Title    string `json:"title" validate:"required,min=5"`
	Content  string `json:"content" validate:"required,min=6"`
	ImageURL string `json:"imageUrl" validate:"-"`
}

// CreatorSummary is the minimal owner view embedded in responses and
// broadcast events.
type CreatorSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FeedPost is a post enriched with its creator summary. The outer Creator
// field shadows the embedded creator id in JSON output.
type FeedPost struct {
	models.Post
	Creator CreatorSummary `json:"creator"`
}

// FeedService is the single mutation pipeline behind both the REST and
// GraphQL surfaces: validate, authorize, persist, cross-update the owner's
// post list, broadcast. It alone enforces the Post.Creator <-> User.Posts
// pairing; the stores do not cross-reference each other.
type FeedService struct {
	posts   repositories.PostRepository
	users   repositories.UserRepository
	blobs   storage.BlobStore
	hub     *realtime.Hub
	perPage int
	log     zerolog.Logger
}

// NewFeedService creates a new FeedService. perPage below 1 falls back to
// the default page size of 2.
func NewFeedService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	blobs storage.BlobStore,
	hub *realtime.Hub,
	perPage int,
	log zerolog.Logger,
) *FeedService {
	if perPage < 1 {
		perPage = 2
	}
	return &FeedService{
		posts:   posts,
		users:   users,
		blobs:   blobs,
		hub:     hub,
		perPage: perPage,
		log:     log,
	}
}

// CreatePost validates and persists a new post for the caller, appends the
// reference to the caller's post list, and broadcasts a create event.
//
// The post write and the owner-list write are sequential with no shared
// transaction: a failure after the post is saved leaves an orphaned post.
// That window is surfaced as a Persistence error, not compensated.
func (s *FeedService) CreatePost(callerID int, in PostInput) (*FeedPost, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}
	if in.ImageURL == "" {
		return nil, apperr.New(apperr.MissingResource, "no image provided")
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Creator:  callerID,
	}
	if err := s.posts.Create(post); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "could not save post", err)
	}

	user, err := s.users.GetByID(callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.Auth, "invalid user")
		}
		s.log.Error().Err(err).Int("post", post.ID).Msg("post saved but owner lookup failed")
		return nil, apperr.Wrap(apperr.Persistence, "could not load post owner", err)
	}
	user.AddPost(post.ID)
	if err := s.users.Update(user); err != nil {
		// Orphaned post: the stores have diverged and stay diverged.
		s.log.Error().Err(err).Int("post", post.ID).Int("user", user.ID).
			Msg("post saved but owner post list update failed")
		return nil, apperr.Wrap(apperr.Persistence, "could not update post owner", err)
	}

	fp := &FeedPost{Post: *post, Creator: CreatorSummary{ID: user.ID, Name: user.Name}}
	s.hub.Publish(realtime.ActionCreate, fp)
	return fp, nil
}

// UpdatePost applies field changes to a post owned by the caller and
// broadcasts an update event. Supplying a new image locator releases the
// old blob; supplying none keeps the stored image.
func (s *FeedService) UpdatePost(callerID, postID int, in PostInput) (*FeedPost, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	post, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}
	if post.Creator != callerID {
		return nil, apperr.New(apperr.Forbidden, "not authorized")
	}

	if in.ImageURL != "" && in.ImageURL != post.ImageURL {
		s.blobs.Delete(post.ImageURL)
		post.ImageURL = in.ImageURL
	}
	post.Title = in.Title
	post.Content = in.Content
	post.BeforeUpdate()

	if err := s.posts.Update(post); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "could not update post", err)
	}

	fp := s.enrich(post)
	s.hub.Publish(realtime.ActionUpdate, fp)
	return fp, nil
}

// DeletePost removes a post owned by the caller, releases its image blob,
// drops the owner's reference, and broadcasts a delete event carrying the
// post id.
func (s *FeedService) DeletePost(callerID, postID int) error {
	post, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if post.Creator != callerID {
		return apperr.New(apperr.Forbidden, "not authorized")
	}

	s.blobs.Delete(post.ImageURL)

	if err := s.posts.Delete(postID); err != nil {
		return apperr.Wrap(apperr.Persistence, "could not delete post", err)
	}

	user, err := s.users.GetByID(post.Creator)
	if err != nil {
		// Dangling reference: the post is gone but the owner's list
		// still names it. Not compensated.
		s.log.Error().Err(err).Int("post", postID).Msg("post deleted but owner lookup failed")
		return apperr.Wrap(apperr.Persistence, "could not load post owner", err)
	}
	if err := user.RemovePost(postID); err != nil {
		s.log.Warn().Int("post", postID).Int("user", user.ID).Msg("owner post list had no reference")
	}
	if err := s.users.Update(user); err != nil {
		s.log.Error().Err(err).Int("post", postID).Int("user", user.ID).
			Msg("post deleted but owner post list update failed")
		return apperr.Wrap(apperr.Persistence, "could not update post owner", err)
	}

	s.hub.Publish(realtime.ActionDelete, postID)
	return nil
}

// GetPost retrieves a single post with its creator summary
func (s *FeedService) GetPost(id int) (*FeedPost, error) {
	post, err := s.loadPost(id)
	if err != nil {
		return nil, err
	}
	return s.enrich(post), nil
}

// ListPosts retrieves one page of posts, most recent first, together with
// the total post count. Pages beyond the end yield an empty slice.
func (s *FeedService) ListPosts(page int) ([]*FeedPost, int, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.posts.Count()
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Persistence, "could not count posts", err)
	}
	posts, err := s.posts.List(s.perPage, (page-1)*s.perPage)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Persistence, "could not fetch posts", err)
	}

	// Creator lookups are cached per request; pages are small.
	names := make(map[int]string)
	out := make([]*FeedPost, 0, len(posts))
	for _, post := range posts {
		name, ok := names[post.Creator]
		if !ok {
			name = s.creatorName(post.Creator)
			names[post.Creator] = name
		}
		out = append(out, &FeedPost{
			Post:    *post,
			Creator: CreatorSummary{ID: post.Creator, Name: name},
		})
	}
	return out, total, nil
}

// PerPage returns the configured page size
func (s *FeedService) PerPage() int { return s.perPage }

func (s *FeedService) loadPost(id int) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "could not find post")
		}
		return nil, apperr.Wrap(apperr.Persistence, "could not fetch post", err)
	}
	return post, nil
}

// enrich attaches the owner summary. A missing owner degrades to an empty
// name rather than failing a read.
func (s *FeedService) enrich(post *models.Post) *FeedPost {
	return &FeedPost{
		Post:    *post,
		Creator: CreatorSummary{ID: post.Creator, Name: s.creatorName(post.Creator)},
	}
}

func (s *FeedService) creatorName(id int) string {
	user, err := s.users.GetByID(id)
	if err != nil {
		s.log.Warn().Err(err).Int("user", id).Msg("could not resolve post creator")
		return ""
	}
	return user.Name
}

// validatePostInput applies the declarative field rules and converts
// violations into a validation error carrying per-field messages.
func validatePostInput(in PostInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.NewValidation("validation failed, entered data is incorrect")
	}
	data := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		data = append(data, fieldMessage(fe))
	}
	return apperr.NewValidation("validation failed, entered data is incorrect", data...)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	default:
		return field + " is invalid"
	}
}
