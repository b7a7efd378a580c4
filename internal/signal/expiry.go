package signal

// ExpiryExit triggers only for option positions whose matching quote expires
// today or tomorrow. Any unset or mismatched context means no trigger.
type ExpiryExit struct {
	BaseExit
}

func (s *ExpiryExit) Trigger() bool {
	if s.Quote == nil || s.Position == nil {
		return false
	}
	if !s.Position.IsOption() || s.Position.Symbol != s.Quote.Symbol {
		return false
	}
	return s.Quote.DaysToExpiration <= 1
}
