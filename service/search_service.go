package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	model "github.com/rlavoie/complaintdesk/models"
)

const complaintIndex = "complaints"

// indexComplaint mirrors a complaint into Elasticsearch. Indexing failures
// never fail the database write; the index is a secondary view.
func (s *ComplaintService) indexComplaint(complaint *model.Complaint) {
	if s.esClient == nil {
		return
	}

	doc := map[string]interface{}{
		"complaint_id":      complaint.ID,
		"company_id":        complaint.CompanyID,
		"part_id":           complaint.PartID,
		"issue_type":        complaint.IssueType,
		"details":           complaint.Details,
		"work_order_number": complaint.WorkOrderNumber,
		"ncr_number":        complaint.NCRNumber,
		"status":            complaint.Status,
		"is_deleted":        complaint.IsDeleted,
		"timestamp":         time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		log.Printf("[indexComplaint] marshal error: %v", err)
		return
	}

	res, err := s.esClient.Index(
		complaintIndex,
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(fmt.Sprintf("%d", complaint.ID)),
		s.esClient.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("[indexComplaint] Elasticsearch indexing error: %v", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("[indexComplaint] Elasticsearch indexing failed: %s", res.String())
	}
}

// SearchComplaints runs a full-text query against the complaint index.
func (s *ComplaintService) SearchComplaints(query string) ([]map[string]interface{}, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("elasticsearch client is not initialized")
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"details", "work_order_number", "ncr_number"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_deleted": false},
				},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(context.Background()),
		s.esClient.Search.WithIndex(complaintIndex),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hitsMap, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits structure in search response")
	}
	hitsArray, ok := hitsMap["hits"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits array in search response")
	}

	var complaints []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		complaints = append(complaints, source)
	}

	return complaints, nil
}
