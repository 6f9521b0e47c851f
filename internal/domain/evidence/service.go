package evidence

import "context"

type EvidenceService interface {
	Upload(ctx context.Context, req UploadEvidenceRequest) (EvidenceResponse, error)
	MyHistory(ctx context.Context, filter HistoryFilter) (ListEvidenceResponse, error)
	ListForUser(ctx context.Context, userID string, filter HistoryFilter) (ListEvidenceResponse, error)
}
