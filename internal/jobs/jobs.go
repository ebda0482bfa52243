package jobs

import (
	"context"

	attachment "anoa.com/devsearch/internal/modules/attachment/service"
	search "anoa.com/devsearch/internal/modules/search/service"
)

const (
	JobCleanupAttachments = "cleanup-attachments"
	JobReindexSearch      = "reindex-search"
)

func CleanupAttachments(schedule string, svc attachment.AttachmentService) Job {
	return Job{
		Name:     JobCleanupAttachments,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := svc.CleanupOrphanAttachments(ctx)
			return err
		},
	}
}

func ReindexSearch(schedule string, svc search.SearchService, src search.Source) Job {
	return Job{
		Name:     JobReindexSearch,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := svc.Reindex(ctx, src)
			return err
		},
	}
}
