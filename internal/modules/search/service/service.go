package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/internal/modules/search/dto"
	"anoa.com/devsearch/pkg/apperror"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/sanitizer"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const (
	IndexProjects = "projects"
	IndexProfiles = "profiles"
)

// Indexer mirrors domain rows into the search index. Failures are logged
// and never block the write that triggered them.
type Indexer interface {
	IndexProject(ctx context.Context, project *entity.Project)
	IndexProfile(ctx context.Context, profile *entity.Profile)
	DeleteProject(ctx context.Context, id uuid.UUID)
	DeleteProfile(ctx context.Context, id uuid.UUID)
}

// Source feeds a full re-index.
type Source interface {
	FindAllProjects(ctx context.Context) ([]*entity.Project, error)
	FindAllProfiles(ctx context.Context) ([]*entity.Profile, error)
}

type SearchService interface {
	Indexer
	Search(ctx context.Context, index, query string, limit int64) (*dto.SearchResult, error)
	Reindex(ctx context.Context, src Source) (*dto.ReindexResult, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

// NewMeiliSearchService prepares the indexes and returns the service.
func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	projectSearchable := []string{"title", "description", "owner_name", "tags"}
	if _, err := s.client.Index(IndexProjects).UpdateSearchableAttributes(&projectSearchable); err != nil {
		logger.Log.WithError(err).Warn("failed to update projects searchable attributes")
	}
	projectSortable := []string{"vote_ratio", "vote_total", "created_at"}
	if _, err := s.client.Index(IndexProjects).UpdateSortableAttributes(&projectSortable); err != nil {
		logger.Log.WithError(err).Warn("failed to update projects sortable attributes")
	}
	projectFilterable := []any{"tags", "owner_id"}
	if _, err := s.client.Index(IndexProjects).UpdateFilterableAttributes(&projectFilterable); err != nil {
		logger.Log.WithError(err).Warn("failed to update projects filterable attributes")
	}

	profileSearchable := []string{"name", "username", "short_intro", "skills", "location", "bio"}
	if _, err := s.client.Index(IndexProfiles).UpdateSearchableAttributes(&profileSearchable); err != nil {
		logger.Log.WithError(err).Warn("failed to update profiles searchable attributes")
	}

	logger.Log.Info("meilisearch indexes initialized")
}

func (s *meiliSearchService) IndexProject(ctx context.Context, project *entity.Project) {
	if err := s.addDocuments(ctx, IndexProjects, []dto.ProjectDocument{ProjectDocument(project)}); err != nil {
		logger.Log.WithError(err).WithField("project_id", project.ID).Warn("failed to index project")
	}
}

func (s *meiliSearchService) IndexProfile(ctx context.Context, profile *entity.Profile) {
	if err := s.addDocuments(ctx, IndexProfiles, []dto.ProfileDocument{ProfileDocument(profile)}); err != nil {
		logger.Log.WithError(err).WithField("profile_id", profile.ID).Warn("failed to index profile")
	}
}

func (s *meiliSearchService) DeleteProject(ctx context.Context, id uuid.UUID) {
	if _, err := s.client.Index(IndexProjects).DeleteDocumentWithContext(ctx, id.String()); err != nil {
		logger.Log.WithError(err).WithField("project_id", id).Warn("failed to remove project from index")
	}
}

func (s *meiliSearchService) DeleteProfile(ctx context.Context, id uuid.UUID) {
	if _, err := s.client.Index(IndexProfiles).DeleteDocumentWithContext(ctx, id.String()); err != nil {
		logger.Log.WithError(err).WithField("profile_id", id).Warn("failed to remove profile from index")
	}
}

func (s *meiliSearchService) addDocuments(ctx context.Context, index string, docs any) error {
	task, err := s.client.Index(index).AddDocumentsWithContext(ctx, docs, strPtr("id"))
	if err != nil {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{"index": index, "task_uid": task.TaskUID}).Debug("documents queued")
	return nil
}

func (s *meiliSearchService) Search(ctx context.Context, index, query string, limit int64) (*dto.SearchResult, error) {
	if index == "" {
		index = IndexProjects
	}
	if index != IndexProjects && index != IndexProfiles {
		return nil, fmt.Errorf("unknown index %q: %w", index, apperror.ErrBadRequest)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	resp, err := s.client.Index(index).SearchWithContext(ctx, strings.TrimSpace(query), &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	hits, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}

	return &dto.SearchResult{
		Index:              index,
		Query:              query,
		Hits:               hits,
		EstimatedTotalHits: resp.EstimatedTotalHits,
	}, nil
}

func (s *meiliSearchService) Reindex(ctx context.Context, src Source) (*dto.ReindexResult, error) {
	projects, err := src.FindAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := src.FindAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ReindexResult{Projects: len(projects), Profiles: len(profiles)}

	if len(projects) > 0 {
		docs := make([]dto.ProjectDocument, 0, len(projects))
		for _, p := range projects {
			docs = append(docs, ProjectDocument(p))
		}
		if err := s.addDocuments(ctx, IndexProjects, docs); err != nil {
			return nil, fmt.Errorf("reindex projects: %w", err)
		}
	}
	if len(profiles) > 0 {
		docs := make([]dto.ProfileDocument, 0, len(profiles))
		for _, p := range profiles {
			docs = append(docs, ProfileDocument(p))
		}
		if err := s.addDocuments(ctx, IndexProfiles, docs); err != nil {
			return nil, fmt.Errorf("reindex profiles: %w", err)
		}
	}

	logger.Log.WithFields(map[string]interface{}{"projects": result.Projects, "profiles": result.Profiles}).Info("search reindex queued")
	return result, nil
}

// ProjectDocument flattens a project into its search document.
func ProjectDocument(p *entity.Project) dto.ProjectDocument {
	doc := dto.ProjectDocument{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: sanitizer.Text(p.Description),
		Tags:        make([]string, 0, len(p.Tags)),
		VoteTotal:   p.VoteTotal,
		VoteRatio:   p.VoteRatio,
		CreatedAt:   p.CreatedAt.Unix(),
	}
	if p.OwnerID != nil {
		doc.OwnerID = p.OwnerID.String()
	}
	if p.Owner != nil {
		doc.OwnerName = p.Owner.Name
	}
	if p.FeaturedImage != nil {
		doc.FeaturedImage = *p.FeaturedImage
	}
	for _, t := range p.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	return doc
}

// ProfileDocument flattens a profile into its search document.
func ProfileDocument(p *entity.Profile) dto.ProfileDocument {
	doc := dto.ProfileDocument{
		ID:         p.ID.String(),
		Name:       p.Name,
		Username:   p.Username,
		ShortIntro: p.ShortIntro,
		Bio:        sanitizer.Text(p.Bio),
		Location:   p.Location,
		Skills:     make([]string, 0, len(p.Skills)),
	}
	if p.ProfileImage != nil {
		doc.ProfileImage = *p.ProfileImage
	}
	for _, sk := range p.Skills {
		doc.Skills = append(doc.Skills, sk.Name)
	}
	return doc
}

func strPtr(s string) *string {
	return &s
}

// NoopIndexer is used when no search backend is configured.
type NoopIndexer struct{}

func (NoopIndexer) IndexProject(context.Context, *entity.Project) {}
func (NoopIndexer) IndexProfile(context.Context, *entity.Profile) {}
func (NoopIndexer) DeleteProject(context.Context, uuid.UUID)      {}
func (NoopIndexer) DeleteProfile(context.Context, uuid.UUID)      {}

type projectLister interface {
	FindAll(ctx context.Context) ([]*entity.Project, error)
}

type profileLister interface {
	FindAll(ctx context.Context) ([]*entity.Profile, error)
}

type repositorySource struct {
	projects projectLister
	profiles profileLister
}

// NewSource adapts the project and profile repositories for Reindex.
func NewSource(projects projectLister, profiles profileLister) Source {
	return &repositorySource{projects: projects, profiles: profiles}
}

func (s *repositorySource) FindAllProjects(ctx context.Context) ([]*entity.Project, error) {
	return s.projects.FindAll(ctx)
}

func (s *repositorySource) FindAllProfiles(ctx context.Context) ([]*entity.Profile, error) {
	return s.profiles.FindAll(ctx)
}
