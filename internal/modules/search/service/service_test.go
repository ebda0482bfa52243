package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/pkg/apperror"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeili answers the few endpoints the service calls and records document writes.
type fakeMeili struct {
	mu        sync.Mutex
	documents map[string][]map[string]any
	deleted   []string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/search"):
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"hits":[{"id":"p1","title":"Portfolio"}],"estimatedTotalHits":1,"processingTimeMs":1,"query":"port","limit":20,"offset":0}`)
		return
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/documents"):
		var docs []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&docs)
		index := strings.Split(strings.TrimPrefix(r.URL.Path, "/indexes/"), "/")[0]
		f.mu.Lock()
		f.documents[index] = append(f.documents[index], docs...)
		f.mu.Unlock()
	case r.Method == http.MethodDelete:
		f.mu.Lock()
		f.deleted = append(f.deleted, r.URL.Path)
		f.mu.Unlock()
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"projects","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2026-01-01T00:00:00Z"}`)
}

func newService(t *testing.T) (SearchService, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{documents: map[string][]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewMeiliSearchService(meilisearch.New(srv.URL)), fake
}

func sampleProject() *entity.Project {
	owner := uuid.New()
	image := "https://res.cloudinary.com/demo/image/upload/cover.webp"
	return &entity.Project{
		ID:            uuid.New(),
		OwnerID:       &owner,
		Owner:         &entity.Profile{ID: owner, Name: "Ada Lovelace"},
		Title:         "Analytical Engine",
		Description:   "<p>Notes on <b>computation</b></p>",
		FeaturedImage: &image,
		Tags:          []entity.Tag{{Name: "go"}, {Name: "math"}},
		VoteTotal:     4,
		VoteRatio:     75,
		CreatedAt:     time.Unix(1700000000, 0),
	}
}

func TestProjectDocument(t *testing.T) {
	p := sampleProject()
	doc := ProjectDocument(p)

	assert.Equal(t, p.ID.String(), doc.ID)
	assert.Equal(t, "Notes on computation", doc.Description)
	assert.Equal(t, "Ada Lovelace", doc.OwnerName)
	assert.Equal(t, p.OwnerID.String(), doc.OwnerID)
	assert.Equal(t, []string{"go", "math"}, doc.Tags)
	assert.Equal(t, int64(1700000000), doc.CreatedAt)
	assert.Equal(t, *p.FeaturedImage, doc.FeaturedImage)
}

func TestProjectDocumentWithoutOwner(t *testing.T) {
	doc := ProjectDocument(&entity.Project{ID: uuid.New(), Title: "Orphan"})
	assert.Empty(t, doc.OwnerID)
	assert.Empty(t, doc.OwnerName)
	assert.Equal(t, []string{}, doc.Tags)
}

func TestProfileDocument(t *testing.T) {
	p := &entity.Profile{
		ID:       uuid.New(),
		Name:     "Grace",
		Username: "grace",
		Bio:      "Rear <i>admiral</i>",
		Skills:   []entity.Skill{{Name: "COBOL"}, {Name: "Compilers"}},
	}
	doc := ProfileDocument(p)

	assert.Equal(t, "Rear admiral", doc.Bio)
	assert.Equal(t, []string{"COBOL", "Compilers"}, doc.Skills)
	assert.Empty(t, doc.ProfileImage)
}

func TestIndexAndDelete(t *testing.T) {
	svc, fake := newService(t)
	p := sampleProject()

	svc.IndexProject(context.Background(), p)
	svc.DeleteProfile(context.Background(), p.ID)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.documents[IndexProjects], 1)
	assert.Equal(t, "Analytical Engine", fake.documents[IndexProjects][0]["title"])
	require.Len(t, fake.deleted, 1)
	assert.Contains(t, fake.deleted[0], "/indexes/profiles/documents/"+p.ID.String())
}

func TestSearch(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Search(context.Background(), "", "port", 0)
	require.NoError(t, err)
	assert.Equal(t, IndexProjects, res.Index)
	assert.Equal(t, int64(1), res.EstimatedTotalHits)
	assert.JSONEq(t, `[{"id":"p1","title":"Portfolio"}]`, string(res.Hits))
}

func TestSearchRejectsUnknownIndex(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Search(context.Background(), "users", "x", 10)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

type staticSource struct {
	projects []*entity.Project
	profiles []*entity.Profile
}

func (s staticSource) FindAllProjects(context.Context) ([]*entity.Project, error) { return s.projects, nil }
func (s staticSource) FindAllProfiles(context.Context) ([]*entity.Profile, error) { return s.profiles, nil }

func TestReindex(t *testing.T) {
	svc, fake := newService(t)

	res, err := svc.Reindex(context.Background(), staticSource{
		projects: []*entity.Project{sampleProject(), sampleProject()},
		profiles: []*entity.Profile{{ID: uuid.New(), Name: "Linus"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Projects)
	assert.Equal(t, 1, res.Profiles)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.documents[IndexProjects], 2)
	assert.Len(t, fake.documents[IndexProfiles], 1)
}
