// Package jobindex keeps an Elasticsearch index of open jobs used to narrow
// job-match checks. The index is a pre-filter only; callers re-verify every
// hit against the store.
package jobindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
)

const maxCandidates = 1000

type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func New(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   name,
		logger: log.WithFields(map[string]interface{}{"component": "jobindex", "index": name}),
	}
}

type document struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"companyId"`
	Title     string     `json:"title"`
	Skills    []string   `json:"skills"`
	Marks     float64    `json:"marks"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	IndexedAt time.Time  `json:"indexedAt"`
}

// Reindex upserts jobs in one bulk request.
func (i *Index) Reindex(ctx context.Context, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	now := time.Now().UTC()
	for _, j := range jobs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": i.name, "_id": j.ID}}
		skills := make([]string, 0, len(j.Skills))
		for _, s := range j.Skills {
			if n := models.NormalizeSkill(s); n != "" {
				skills = append(skills, n)
			}
		}
		doc := document{
			ID: j.ID, CompanyID: j.CompanyID, Title: j.Title,
			Skills: skills, Marks: j.Marks, Deadline: j.Deadline, IndexedAt: now,
		}
		for _, v := range []interface{}{meta, doc} {
			line, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode bulk line: %w", err)
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
	}

	req := esapi.BulkRequest{Body: &buf, Refresh: "true"}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("bulk index failed: %s", res.String()))
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("decode bulk response: %w", err))
	}
	if out.Errors {
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("bulk index reported item errors"))
	}

	i.logger.Debug("jobs reindexed", map[string]interface{}{"count": len(jobs)})
	return nil
}

// SearchCandidates returns IDs of indexed jobs sharing at least one skill
// whose marks threshold is at most marks.
func (i *Index) SearchCandidates(ctx context.Context, skills []string, marks float64) ([]string, error) {
	terms := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := models.NormalizeSkill(s); n != "" {
			terms = append(terms, n)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"terms": map[string]interface{}{"skills": terms}},
					map[string]interface{}{"range": map[string]interface{}{"marks": map[string]interface{}{"lte": marks}}},
				},
			},
		},
		"_source": []string{"id"},
		"size":    maxCandidates,
	}
	body, _ := json.Marshal(query)

	req := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, errors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewExternalServiceError("elasticsearch", fmt.Errorf("search failed: %s", res.String()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewExternalServiceError("elasticsearch", fmt.Errorf("decode search response: %w", err))
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
