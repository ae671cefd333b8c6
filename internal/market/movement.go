package market

// MovementType identifies which line moved.
type MovementType string

const (
	MovementMoneyline MovementType = "moneyline"
	MovementSpread    MovementType = "spread"
	MovementTotal     MovementType = "total"
)

// Movement is a derived view over two or more snapshots. It is computed on
// demand and never stored.
type Movement struct {
	Type           MovementType `json:"type"`
	Direction      string       `json:"direction"`
	Magnitude      float64      `json:"magnitude"`
	Interpretation string       `json:"interpretation"`
}

// MovementReport is the result of a line movement scan over a history window.
type MovementReport struct {
	Detected    bool       `json:"detected"`
	Movements   []Movement `json:"movements,omitempty"`
	SpanMinutes float64    `json:"span_minutes,omitempty"`
	// Velocity is mean absolute spread change per minute across the window.
	Velocity float64 `json:"velocity,omitempty"`
}
