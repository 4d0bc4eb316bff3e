package responses

// Stream event kinds the adapter reacts to. The backend emits further event
// kinds (in-progress markers, item lifecycle events); consumers must treat
// unknown kinds as no-ops.
const (
	EventOutputItemAdded = "response.output_item.added"
	EventOutputTextDelta = "response.output_text.delta"
	EventOutputTextDone  = "response.output_text.done"
	EventCompleted       = "response.completed"
	EventFailed          = "response.failed"
)

// StreamEvent is one tagged record of a backend event stream. Which fields
// are populated depends on Type: item events carry Item, delta events carry
// Delta (and Text on the closing segment event), terminal events carry the
// full Response snapshot.
type StreamEvent struct {
	Type     string      `json:"type"`
	Item     *OutputItem `json:"item,omitempty"`
	Delta    string      `json:"delta,omitempty"`
	Text     string      `json:"text,omitempty"`
	Response *Response   `json:"response,omitempty"`
}
