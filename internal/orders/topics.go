package orders

const (
	TopicSessionOpened    = "pos.session.opened"
	TopicSessionDeleted   = "pos.session.deleted"
	TopicSaleCompleted    = "pos.sale.completed"
	TopicStockDecremented = "pos.stock.decremented"
)

// TopicFor maps an event type to its topic; unknown types map to "".
func TopicFor(eventType string) string {
	switch eventType {
	case EventSessionOpened:
		return TopicSessionOpened
	case EventSessionDeleted:
		return TopicSessionDeleted
	case EventSaleCompleted:
		return TopicSaleCompleted
	case EventStockDecremented:
		return TopicStockDecremented
	}
	return ""
}

// Partition key = session id, so every event of one table keeps its order.
func PartitionKey(sessionID string) []byte { return []byte(sessionID) }
