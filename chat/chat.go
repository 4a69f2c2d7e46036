package chat

// Message roles recognized by the assistant backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation with the assistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Product is one product recommendation returned by the assistant.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price,omitempty"`
	Currency string  `json:"currency,omitempty"`
	URL      string  `json:"url,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// Response is the assistant's answer to a query.
//
// Cached reports whether the response was served from the local cache
// rather than the backend. Stored copies always carry Cached=false so
// freshness is decided at lookup time.
type Response struct {
	Products []Product `json:"products"`
	Summary  string    `json:"summary"`
	Cached   bool      `json:"cached"`
}

// Clone returns a deep copy of the response. Cloning a nil response
// returns nil.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := &Response{
		Summary: r.Summary,
		Cached:  r.Cached,
	}
	if r.Products != nil {
		out.Products = make([]Product, len(r.Products))
		copy(out.Products, r.Products)
	}
	return out
}
