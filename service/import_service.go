package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	model "github.com/kmaina/CommitteeDesk/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Bulk import accepts at most this many rows in one batch.
const maxBatchRows = 500

// Spreadsheet exports carry a header row, so the first data row is row 2 in
// the sheet the user is looking at.
const headerRowOffset = 1

// ImportRow is the external row contract for bulk import. The field names
// mirror the spreadsheet column headers exactly. Date and day-count cells may
// arrive as strings or as raw spreadsheet numbers.
type ImportRow struct {
	BusinessName     string      `json:"Business Name"`
	Committee        string      `json:"Committee"`
	TypeOfBusiness   string      `json:"Type of Business"`
	DateOfCommitting interface{} `json:"Date of Committing"`
	TimeGivenDays    interface{} `json:"Time Given (Days)"`
	DueDate          interface{} `json:"Due Date"`
}

// ParsedRow is the normalized form of a valid import row.
type ParsedRow struct {
	Title         string     `json:"title"`
	CommitteeName string     `json:"committee_name"`
	Category      string     `json:"category"`
	DateCommitted time.Time  `json:"date_committed"`
	AllocatedDays int        `json:"allocated_days"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// RowResult is the validation outcome for one row. A row is valid iff it
// accumulated zero errors; warnings never affect validity.
type RowResult struct {
	Row      int        `json:"row"`
	Valid    bool       `json:"valid"`
	Errors   []string   `json:"errors"`
	Warnings []string   `json:"warnings"`
	Parsed   *ParsedRow `json:"parsed,omitempty"`
}

// ExistingItem is the slice of persisted state the duplicate check needs.
type ExistingItem struct {
	Title         string
	CommitteeName string
	Category      string
}

// ValidateRows checks a batch of import rows against the deadline, category,
// committee and duplicate rules, accumulating every applicable error per row
// rather than stopping at the first. Batches over the row cap are rejected
// outright before any per-row validation runs.
func ValidateRows(rows []ImportRow, existing []ExistingItem, knownCommittees []string) ([]RowResult, error) {
	if len(rows) > maxBatchRows {
		return nil, newValidationError("batch has %d rows, the maximum is %d", len(rows), maxBatchRows)
	}

	committees := make(map[string]bool, len(knownCommittees))
	for _, c := range knownCommittees {
		committees[c] = true
	}

	results := make([]RowResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, validateRow(row, i+1+headerRowOffset, existing, committees))
	}
	return results, nil
}

func validateRow(row ImportRow, rowNumber int, existing []ExistingItem, committees map[string]bool) RowResult {
	result := RowResult{Row: rowNumber, Errors: []string{}, Warnings: []string{}}
	addError := func(format string, args ...interface{}) {
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	title := strings.TrimSpace(row.BusinessName)
	committee := strings.TrimSpace(row.Committee)
	category := strings.TrimSpace(row.TypeOfBusiness)

	if title == "" {
		addError("row %d: Business Name is required", rowNumber)
	}
	if committee == "" {
		addError("row %d: Committee is required", rowNumber)
	}
	if category == "" {
		addError("row %d: Type of Business is required", rowNumber)
	}

	var dateCommitted time.Time
	dateCommittedOK := false
	if row.DateOfCommitting == nil || row.DateOfCommitting == "" {
		addError("row %d: Date of Committing is required", rowNumber)
	} else {
		parsed, err := parseFlexibleDate(row.DateOfCommitting)
		if err != nil {
			addError("row %d: Date of Committing %v is not a valid date", rowNumber, row.DateOfCommitting)
		} else {
			dateCommitted = parsed
			dateCommittedOK = true
		}
	}

	// Deadline source: a parseable Due Date wins over a day count.
	allocatedDays := 0
	var dueDate *time.Time
	dueParsed, dueErr := time.Time{}, error(nil)
	hasDue := row.DueDate != nil && row.DueDate != ""
	if hasDue {
		dueParsed, dueErr = parseFlexibleDate(row.DueDate)
	}
	hasDayCount := row.TimeGivenDays != nil && row.TimeGivenDays != ""

	switch {
	case hasDue && dueErr == nil:
		dueDate = &dueParsed
		if dateCommittedOK {
			diff := Countdown(dueParsed, dateCommitted)
			if diff < 0 {
				addError("row %d: Due Date is before Date of Committing", rowNumber)
			} else {
				allocatedDays = diff
			}
		}
	case hasDayCount:
		days, err := parseDayCount(row.TimeGivenDays)
		if err != nil || days < 0 {
			addError("row %d: Time Given (Days) %v is not a valid non-negative day count", rowNumber, row.TimeGivenDays)
		} else {
			allocatedDays = days
		}
	default:
		if hasDue {
			addError("row %d: Due Date %v is not a valid date", rowNumber, row.DueDate)
		} else {
			addError("row %d: missing Due Date or Time Given (Days)", rowNumber)
		}
	}

	if category != "" && !model.ValidCategory(category) {
		addError("row %d: Type of Business %q is not recognized, valid options: %s", rowNumber, category, strings.Join(model.Categories, ", "))
	}
	if committee != "" && !committees[committee] {
		addError("row %d: Committee %q is not a known committee", rowNumber, committee)
	}

	// Duplicate check blocks the row outright.
	for _, item := range existing {
		if strings.EqualFold(item.Title, title) && item.Category == category && item.CommitteeName == committee {
			addError("row %d: possible duplicate of existing %s %q in %s", rowNumber, category, item.Title, committee)
			break
		}
	}

	if len(result.Errors) == 0 {
		result.Valid = true
		result.Parsed = &ParsedRow{
			Title:         title,
			CommitteeName: committee,
			Category:      category,
			DateCommitted: dateCommitted,
			AllocatedDays: allocatedDays,
			DueDate:       dueDate,
		}
	}
	return result
}

// parseFlexibleDate accepts DD/MM/YYYY strings and spreadsheet serial-date
// numbers (days since the 1900 epoch, 25569 days before the Unix epoch).
func parseFlexibleDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case float64:
		return serialToDate(v), nil
	case int:
		return serialToDate(float64(v)), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if t, err := time.Parse("02/01/2006", trimmed); err == nil {
			return t.UTC(), nil
		}
		if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return serialToDate(serial), nil
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", value)
	}
}

func serialToDate(serial float64) time.Time {
	seconds := (serial - 25569) * 86400
	return time.Unix(int64(seconds), 0).UTC()
}

func parseDayCount(value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("day count %v is not an integer", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported day count value %v", value)
	}
}

// ValidateBatch loads the persisted items the duplicate rule needs, then runs
// ValidateRows over the batch.
func (s *ItemService) ValidateBatch(rows []ImportRow, knownCommittees []string) ([]RowResult, error) {
	existing, err := s.existingItems()
	if err != nil {
		return nil, err
	}
	return ValidateRows(rows, existing, knownCommittees)
}

func (s *ItemService) existingItems() ([]ExistingItem, error) {
	existing := []ExistingItem{}
	for _, table := range []string{model.TableBills, model.TableCommitteeDocuments} {
		var items []model.BusinessItem
		if err := s.db.Table(table).Select("title", "committee_name", "category").Find(&items).Error; err != nil {
			log.Printf("[existingItems] Error fetching from %s: %v", table, err)
			return nil, fmt.Errorf("failed to fetch existing items: %w", err)
		}
		for _, item := range items {
			existing = append(existing, ExistingItem{
				Title:         item.Title,
				CommitteeName: item.CommitteeName,
				Category:      item.Category,
			})
		}
	}
	return existing, nil
}

// ImportOutcome reports what happened to one row during import.
type ImportOutcome struct {
	Row    int    `json:"row"`
	ItemID string `json:"item_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ImportReport is the result of one confirmed bulk import.
type ImportReport struct {
	BatchID  string          `json:"batch_id"`
	Results  []RowResult     `json:"results"`
	Imported []ImportOutcome `json:"imported"`
}

// ImportBatch validates the batch and creates an item for every valid row,
// strictly sequentially. Individual insert failures are reported per row and
// never roll back rows that already succeeded. The raw batch is archived to
// S3 when archival is configured.
func (s *ItemService) ImportBatch(rows []ImportRow, knownCommittees []string, callerIsPrivileged bool) (*ImportReport, error) {
	results, err := s.ValidateBatch(rows, knownCommittees)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		BatchID: uuid.NewString(),
		Results: results,
	}

	for _, result := range results {
		if !result.Valid {
			continue
		}
		draft := CreateItemInput{
			Title:         result.Parsed.Title,
			CommitteeName: result.Parsed.CommitteeName,
			Category:      result.Parsed.Category,
			DateCommitted: result.Parsed.DateCommitted,
			AllocatedDays: result.Parsed.AllocatedDays,
		}
		if result.Parsed.DueDate != nil {
			draft.PresentationDate = result.Parsed.DueDate
		}

		item, err := s.CreateItem(draft, callerIsPrivileged)
		outcome := ImportOutcome{Row: result.Row}
		if err != nil {
			log.Printf("[ImportBatch] Row %d failed to import: %v", result.Row, err)
			outcome.Error = err.Error()
		} else {
			outcome.ItemID = item.ID
		}
		report.Imported = append(report.Imported, outcome)
	}

	s.archiveBatch(report.BatchID, rows)
	log.Printf("[ImportBatch] Batch %s: %d rows, %d imported", report.BatchID, len(rows), len(report.Imported))
	return report, nil
}

// archiveBatch stores the raw batch payload in the archive bucket.
func (s *ItemService) archiveBatch(batchID string, rows []ImportRow) {
	if s.s3Client == nil {
		return
	}
	bucket := os.Getenv("ARCHIVE_BUCKET")
	if bucket == "" {
		log.Println("[archiveBatch] ARCHIVE_BUCKET not set; skipping batch archival")
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		log.Printf("[archiveBatch] Error marshaling batch %s: %v", batchID, err)
		return
	}

	key := fmt.Sprintf("imports/%s-%s.json", time.Now().UTC().Format("20060102T150405"), batchID)
	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Printf("[archiveBatch] S3 upload error for batch %s: %v", batchID, err)
		return
	}
	log.Printf("[archiveBatch] Batch %s archived at %s", batchID, key)
}
