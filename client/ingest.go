package client

import "context"

// IngestService handles record submission.
type IngestService struct {
	c *Client
}

// Submit queues a single record for clustering.
func (s *IngestService) Submit(ctx context.Context, rec *IngestRecord) (*IngestResponse, error) {
	var resp IngestResponse
	if err := s.c.post(ctx, "/api/v1/ingest", rec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitBatch queues a batch of records for clustering.
func (s *IngestService) SubmitBatch(ctx context.Context, recs []IngestRecord) (*BatchResponse, error) {
	var resp BatchResponse
	if err := s.c.post(ctx, "/api/v1/ingest/batch", recs, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
