package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	model "github.com/kmaina/CommitteeDesk/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

// ItemService owns the business-item lifecycle: creation, rescheduling,
// edits, approvals, category conversion and the periodic freeze sweep.
type ItemService struct {
	db       *gorm.DB
	esClient *elasticsearch.Client
	s3Client *s3.S3
	notifier *Notifier
}

// NewItemService initializes the service. Elasticsearch and S3 are optional
// collaborators: when their configuration is absent the service still works,
// it just skips indexing and import archival.
func NewItemService(db *gorm.DB) (*ItemService, error) {
	// Initialize Elasticsearch client
	esURL := os.Getenv("ELASTICSEARCH_URL")
	var esClient *elasticsearch.Client
	if esURL != "" {
		esConfig := elasticsearch.Config{
			Addresses: []string{esURL},
		}
		var err error
		esClient, err = elasticsearch.NewClient(esConfig)
		if err != nil {
			log.Printf("Warning: Failed to create Elasticsearch client: %v", err)
		}
	}

	// Initialize the S3 client used to archive confirmed import batches.
	var s3Client *s3.S3
	region := os.Getenv("ARCHIVE_REGION")
	endpoint := os.Getenv("ARCHIVE_S3_ENDPOINT")
	accessKey := os.Getenv("ARCHIVE_ACCESS_KEY")
	secretKey := os.Getenv("ARCHIVE_SECRET_KEY")
	if region != "" && endpoint != "" && accessKey != "" && secretKey != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:           aws.String(region),
			Endpoint:         aws.String(endpoint),
			DisableSSL:       aws.Bool(false),
			Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
			S3ForcePathStyle: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		s3Client = s3.New(sess)
	} else {
		log.Println("Import archive S3 configuration incomplete; batch archival disabled")
	}

	return &ItemService{
		db:       db,
		esClient: esClient,
		s3Client: s3Client,
		notifier: NewNotifier(db),
	}, nil
}

// findItem locates an item by id across both backing tables and reports
// which table it lives in.
func (s *ItemService) findItem(id string) (*model.BusinessItem, string, error) {
	var item model.BusinessItem
	for _, table := range []string{model.TableBills, model.TableCommitteeDocuments} {
		err := s.db.Table(table).Where("id = ?", id).First(&item).Error
		if err == nil {
			return &item, table, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[findItem] Error querying %s for %s: %v", table, id, err)
			return nil, "", err
		}
	}
	return nil, "", &NotFoundError{ID: id}
}

// GetItem returns a single item with its effective status and countdown
// derived from the current time.
func (s *ItemService) GetItem(id string) (map[string]interface{}, error) {
	item, _, err := s.findItem(id)
	if err != nil {
		return nil, err
	}
	return s.present(item, time.Now()), nil
}

// GetAllItems retrieves every item from both tables, decorating each with
// its effective status and remaining-day count at read time.
func (s *ItemService) GetAllItems() ([]map[string]interface{}, error) {
	now := time.Now()
	presented := []map[string]interface{}{}

	for _, table := range []string{model.TableBills, model.TableCommitteeDocuments} {
		var items []model.BusinessItem
		if err := s.db.Table(table).Find(&items).Error; err != nil {
			log.Printf("[GetAllItems] Error fetching from %s: %v", table, err)
			return nil, fmt.Errorf("failed to fetch items: %w", err)
		}
		for i := range items {
			presented = append(presented, s.present(&items[i], now))
		}
	}

	log.Printf("[GetAllItems] Retrieved %d items", len(presented))
	return presented, nil
}

// present builds the read view of an item: stored fields plus the derived
// effective status and countdown.
func (s *ItemService) present(item *model.BusinessItem, now time.Time) map[string]interface{} {
	view := map[string]interface{}{
		"id":                item.ID,
		"title":             item.Title,
		"committee_name":    item.CommitteeName,
		"category":          item.Category,
		"date_committed":    item.DateCommitted,
		"allocated_days":    item.AllocatedDays,
		"presentation_date": item.PresentationDate,
		"extensions_count":  item.ExtensionsCount,
		"status":            item.Status,
		"status_reason":     item.StatusReason,
		"effective_status":  EffectiveStatus(item.Status, item.PresentationDate, item.ExtensionsCount, now),
		"created_at":        item.CreatedAt,
		"updated_at":        item.UpdatedAt,
	}
	if item.PresentationDate != nil {
		view["days_remaining"] = Countdown(*item.PresentationDate, now)
		view["pending_days"] = PendingDaysFromNow(*item.PresentationDate, now)
	}
	return view
}

// indexItem indexes the item in Elasticsearch. Indexing failures are logged
// and swallowed so they never break the write path.
func (s *ItemService) indexItem(item *model.BusinessItem) error {
	if s.esClient == nil {
		log.Println("Elasticsearch client not initialized. Skipping indexing.")
		return nil
	}

	doc := map[string]interface{}{
		"title":          item.Title,
		"committee_name": item.CommitteeName,
		"category":       item.Category,
		"status":         item.Status,
		"timestamp":      time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal item for indexing: %w", err)
	}

	res, err := s.esClient.Index(
		"business-items",
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(item.ID),
		s.esClient.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("Elasticsearch indexing error: %v", err)
		return nil // Don't break the write path
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("Elasticsearch indexing failed: %s", res.String())
		return nil
	}

	return nil
}

// SearchItems searches indexed items in Elasticsearch.
func (s *ItemService) SearchItems(query string) ([]map[string]interface{}, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("elasticsearch client is not initialized")
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title", "committee_name", "category"},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(context.Background()),
		s.esClient.Search.WithIndex("business-items"),
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

	var items []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := hitMap["_id"].(string); ok {
			source["id"] = id
		}
		items = append(items, source)
	}

	return items, nil
}
