package session

import "github.com/google/uuid"

// State carries the checkout pointers for one buyer session. It is passed
// explicitly through the express flow and persisted by the controller
// layer between requests.
type State struct {
	QuoteID            *uuid.UUID `json:"quote_id,omitempty"`
	LastQuoteID        *uuid.UUID `json:"last_quote_id,omitempty"`
	LastSuccessQuoteID *uuid.UUID `json:"last_success_quote_id,omitempty"`
	LastOrderID        *uuid.UUID `json:"last_order_id,omitempty"`
	LastRealOrderID    string     `json:"last_real_order_id,omitempty"`
}

// ClearOrderRefs drops the pointers left behind by an abandoned attempt.
func (s *State) ClearOrderRefs() {
	s.LastQuoteID = nil
	s.LastSuccessQuoteID = nil
	s.LastOrderID = nil
	s.LastRealOrderID = ""
}

// RecordOrder remembers the order produced by the current attempt.
func (s *State) RecordOrder(quoteID, orderID uuid.UUID, incrementID string) {
	q := quoteID
	o := orderID
	s.LastQuoteID = &q
	s.LastOrderID = &o
	s.LastRealOrderID = incrementID
}

// Restart detaches the finished quote so a new checkout can begin. The
// success pointer keeps the completed quote reachable for the confirmation
// page.
func (s *State) Restart() {
	if s.QuoteID != nil {
		q := *s.QuoteID
		s.LastSuccessQuoteID = &q
	}
	s.QuoteID = nil
}
