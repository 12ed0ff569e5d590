package mock

import (
	"sort"
	"sync"

	"feedboard/app/models"
	"feedboard/app/repositories"
)

// PostRepository is a map-backed PostRepository for tests.
type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex

	// FailUpdate forces Update to fail, for exercising error paths.
	FailUpdate error
}

// UserRepository is a map-backed UserRepository for tests.
type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex

	// FailUpdate forces Update to fail, for exercising error paths.
	FailUpdate error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

// PostRepository implementation

func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	posts := []*models.Post{}
	for _, post := range m.posts {
		copied := *post
		posts = append(posts, &copied)
	}
	// Most recent first, matching the Badger reverse key scan
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})
	if offset >= len(posts) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

func (m *PostRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// UserRepository implementation

func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.BeforeCreate()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	copied.Posts = append([]int(nil), user.Posts...)
	return &copied, nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			copied.Posts = append([]int(nil), user.Posts...)
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	stored := *user
	stored.Posts = append([]int(nil), user.Posts...)
	m.users[user.ID] = &stored
	return nil
}
