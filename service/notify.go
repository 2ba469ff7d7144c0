package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	model "github.com/kmaina/CommitteeDesk/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier appends audit events for state-changing operations and sends the
// freeze alert emails. Both are fire-and-forget: a failed notification is
// logged, never propagated into the operation that triggered it.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Record appends an audit event for the given item and action.
func (n *Notifier) Record(itemID, action string, details map[string]interface{}) {
	event := model.AuditEvent{
		ItemID:    itemID,
		Action:    action,
		Details:   datatypes.JSON(marshalDetails(details)),
		CreatedAt: time.Now(),
	}
	if err := n.db.Create(&event).Error; err != nil {
		log.Printf("[Record] Error writing audit event %s/%s: %v", itemID, action, err)
	}
}

// marshalDetails marshals audit detail maps, falling back to an empty object.
func marshalDetails(details map[string]interface{}) []byte {
	if details == nil {
		return []byte("{}")
	}
	bytes, err := json.Marshal(details)
	if err != nil {
		log.Printf("[marshalDetails] Error marshaling details: %v", err)
		return []byte("{}")
	}
	return bytes
}

// NotifyFrozen records the freeze and emails the clerk desk, when a recipient
// is configured, using Gmail SMTP.
func (n *Notifier) NotifyFrozen(item *model.BusinessItem) {
	n.Record(item.ID, "frozen", map[string]interface{}{
		"title":             item.Title,
		"committee_name":    item.CommitteeName,
		"presentation_date": item.PresentationDate,
	})

	recipient := os.Getenv("CLERK_NOTIFY_EMAIL")
	if recipient == "" {
		return
	}

	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	if from == "" || password == "" {
		log.Println("[NotifyFrozen] SMTP credentials not configured; skipping email")
		return
	}

	subject := fmt.Sprintf("Business item frozen: %s", item.Title)
	due := ""
	if item.PresentationDate != nil {
		due = item.PresentationDate.Format("January 2, 2006")
	}
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Business Item Frozen</h2>
		<p>The following item has run out of allocated time:</p>
		<ul>
			<li><strong>Title:</strong> %s</li>
			<li><strong>Committee:</strong> %s</li>
			<li><strong>Category:</strong> %s</li>
			<li><strong>Presentation Date:</strong> %s</li>
		</ul>
		<p>Please reschedule it or record a conclusion.</p>
	</body>
	</html>
`, item.Title, item.CommitteeName, item.Category, due)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
		body)

	auth := smtp.PlainAuth("", from, password, smtpHost)
	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{recipient}, message); err != nil {
		log.Printf("[NotifyFrozen] Error sending email for item %s: %v", item.ID, err)
		return
	}
	log.Printf("[NotifyFrozen] Freeze alert sent to %s for item %s", recipient, item.ID)
}
