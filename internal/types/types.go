package types

// NotificationTelegram is the only notification method supported so far.
const NotificationTelegram = "telegram"

type Subscriber struct {
	ID                 int64   `json:"id"`
	ChatID             int64   `json:"chat_id"`
	TargetPrice        float64 `json:"target_price"`
	NotificationMethod string  `json:"notification_method"`
	CreatedAt          string  `json:"created_at"`
}
