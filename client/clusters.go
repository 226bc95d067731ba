package client

import (
	"context"
	"net/url"
)

// ClusterService handles cluster read operations.
type ClusterService struct {
	c *Client
}

// Get returns a single cluster by ID.
func (s *ClusterService) Get(ctx context.Context, id string) (*Cluster, error) {
	var cluster Cluster
	if err := s.c.get(ctx, "/api/v1/clusters/"+url.PathEscape(id), nil, &cluster); err != nil {
		return nil, err
	}
	return &cluster, nil
}

// clusterBibsResponse wraps the member bib list response.
type clusterBibsResponse struct {
	ClusterID string `json:"cluster_id"`
	Bibs      []Bib  `json:"bibs"`
}

// Bibs returns the member bibs of a cluster, best metadata first.
func (s *ClusterService) Bibs(ctx context.Context, id string) ([]Bib, error) {
	var resp clusterBibsResponse
	if err := s.c.get(ctx, "/api/v1/clusters/"+url.PathEscape(id)+"/bibs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bibs, nil
}

// BibService handles bib read operations.
type BibService struct {
	c *Client
}

// Get returns a single bib by ID.
func (s *BibService) Get(ctx context.Context, id string) (*Bib, error) {
	var bib Bib
	if err := s.c.get(ctx, "/api/v1/bibs/"+url.PathEscape(id), nil, &bib); err != nil {
		return nil, err
	}
	return &bib, nil
}

// Cluster returns the cluster the given bib contributes to.
func (s *BibService) Cluster(ctx context.Context, id string) (*Cluster, error) {
	var cluster Cluster
	if err := s.c.get(ctx, "/api/v1/bibs/"+url.PathEscape(id)+"/cluster", nil, &cluster); err != nil {
		return nil, err
	}
	return &cluster, nil
}

// identifiersResponse wraps the identifier list response.
type identifiersResponse struct {
	BibID       string       `json:"bib_id"`
	Identifiers []Identifier `json:"identifiers"`
}

// Identifiers returns the identifiers attached to a bib.
func (s *BibService) Identifiers(ctx context.Context, id string) ([]Identifier, error) {
	var resp identifiersResponse
	if err := s.c.get(ctx, "/api/v1/bibs/"+url.PathEscape(id)+"/identifiers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Identifiers, nil
}
