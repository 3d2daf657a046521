package queue

import "github.com/google/uuid"

// Task types.
const (
	TypeBookPublished = "book:published"
	TypeRecountBooks  = "category:recount_books"
)

// Queues, by priority.
const (
	QueueNotification = "notification"
	QueueMaintenance  = "maintenance"
)

// Queues maps every queue to its worker priority.
var Queues = map[string]int{
	QueueNotification: 10,
	QueueMaintenance:  3,
}

// BookPublishedPayload announces a book that became visible to readers.
type BookPublishedPayload struct {
	BookID uuid.UUID `json:"book_id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

type RecountBooksPayload struct{}
