package offline

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultTitle = "Karwan Auliya"
	DefaultBody  = "New update available!"
	DefaultURL   = "/"

	ActionOpen  = "open"
	ActionClose = "close"
)

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type NotificationData struct {
	URL string `json:"url"`
}

// Notification is what a device shows for a push message.
type Notification struct {
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Badge   string           `json:"badge"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
	Actions []Action         `json:"actions"`
}

// PushPayload is the JSON body sent with a push message. Every field is
// optional.
type PushPayload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
}

// DecodePush builds the notification for a push payload, filling defaults
// for missing fields. An empty payload is valid; malformed JSON yields the
// defaults together with the decode error.
func DecodePush(data []byte) (Notification, error) {
	var p PushPayload
	var err error
	if len(data) > 0 {
		if uerr := json.Unmarshal(data, &p); uerr != nil {
			p = PushPayload{}
			err = fmt.Errorf("decode push payload: %w", uerr)
		}
	}
	return NewNotification(p), err
}

func NewNotification(p PushPayload) Notification {
	n := Notification{
		Title:   p.Title,
		Body:    p.Body,
		Icon:    "/icons/icon-192x192.png",
		Badge:   "/icons/icon-72x72.png",
		Vibrate: []int{100, 50, 100},
		Data:    NotificationData{URL: p.URL},
		Actions: []Action{{Action: ActionOpen, Title: "Open"}, {Action: ActionClose, Title: "Close"}},
	}
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Body == "" {
		n.Body = DefaultBody
	}
	if n.Data.URL == "" {
		n.Data.URL = DefaultURL
	}
	return n
}

// ClickResult tells the device what to do after a notification tap.
type ClickResult struct {
	Close   bool   `json:"close"`
	OpenURL string `json:"open_url,omitempty"`
}

// Click always closes the notification and opens its URL unless the close
// action was chosen.
func Click(n Notification, action string) ClickResult {
	res := ClickResult{Close: true}
	if action == ActionClose {
		return res
	}
	res.OpenURL = n.Data.URL
	if res.OpenURL == "" {
		res.OpenURL = DefaultURL
	}
	return res
}
