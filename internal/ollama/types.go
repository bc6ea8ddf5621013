package ollama

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   *bool     `json:"stream,omitempty"`
}

// Message is a single chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model      string  `json:"model"`
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

// StreamChunk is one increment of a streaming chat response. Exactly one
// of Content, Err, or Done carries meaning per chunk; Done is the last
// chunk on a successful stream.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}
