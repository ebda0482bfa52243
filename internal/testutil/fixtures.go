package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"anoa.com/devsearch/internal/entity"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every user made by CreateUser.
const Password = "s3cret-pass"

// CreateUser inserts a developer and returns it with the profile the sync
// callbacks made for it.
func CreateUser(t testing.TB, db *gorm.DB, username string) (*entity.User, *entity.Profile) {
	t.Helper()

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleDeveloper).First(&role).Error; err != nil {
		t.Fatalf("developer role: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Name " + username,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if u.Profile == nil {
		t.Fatalf("no profile created for %s", username)
	}
	return u, u.Profile
}

// MakeAdmin moves the user to the admin role.
func MakeAdmin(t testing.TB, db *gorm.DB, u *entity.User) {
	t.Helper()

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&role).Error; err != nil {
		t.Fatalf("admin role: %v", err)
	}
	if err := db.Model(&entity.User{}).Where("id = ?", u.ID).UpdateColumn("role_id", role.ID).Error; err != nil {
		t.Fatalf("promote %s: %v", u.Username, err)
	}
}

// Storage is an in-memory image store.
type Storage struct {
	mu        sync.Mutex
	UploadErr error
	DeleteErr error
	uploads   []string
	deleted   []string
}

func (s *Storage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://files.example.com/%s/%d-%s", folder, len(s.uploads), fileName)
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *Storage) DeleteImage(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if url == "" {
		return errors.New("empty url")
	}
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *Storage) Uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *Storage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Indexer records what the services asked the search index to do.
type Indexer struct {
	mu              sync.Mutex
	Projects        map[string]string
	Profiles        map[string]string
	DeletedProjects []string
	DeletedProfiles []string
}

func NewIndexer() *Indexer {
	return &Indexer{Projects: map[string]string{}, Profiles: map[string]string{}}
}

func (i *Indexer) IndexProject(_ context.Context, p *entity.Project) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Projects[p.ID.String()] = p.Title
}

func (i *Indexer) IndexProfile(_ context.Context, p *entity.Profile) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Profiles[p.ID.String()] = p.Name
}

func (i *Indexer) DeleteProject(_ context.Context, id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Projects, id.String())
	i.DeletedProjects = append(i.DeletedProjects, id.String())
}

func (i *Indexer) DeleteProfile(_ context.Context, id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Profiles, id.String())
	i.DeletedProfiles = append(i.DeletedProfiles, id.String())
}
