package task

const (
	TypeReminderNotify = "reminder.notify"
	TypeOrderPlaced    = "order.placed"
	TypeFeedbackSend   = "feedback.send"
)

type ReminderNotifyPayload struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	URL          string `json:"url"`
}

type OrderPlacedPayload struct {
	OrderID  string `json:"order_id"`
	SiteName string `json:"site_name"`
	AdminURL string `json:"admin_url"`
}

// FeedbackSendPayload values are HTML-escaped before they are queued.
type FeedbackSendPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
