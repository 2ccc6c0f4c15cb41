package commands

// SubscriberStore is the slice of the database the command layer needs.
type SubscriberStore interface {
	UpsertSubscriber(chatID int64, targetPrice float64) error
}

type PriceSource interface {
	Fetch() (float64, bool)
}

// Handler implements the three user-facing commands. Each method returns
// the reply text; the telegram adapter takes care of delivering it.
type Handler struct {
	Store  SubscriberStore
	Prices PriceSource
}
