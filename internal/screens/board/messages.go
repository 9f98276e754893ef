package board

import "time"

// tickMsg refreshes the elapsed-time readout once a second.
type tickMsg time.Time
