package enums

// SubmitEvent names the lifecycle events dispatched around quote submission.
type SubmitEvent string

const (
	EventQuoteSubmitBefore  SubmitEvent = "quote_submit_before"
	EventQuoteSubmitSuccess SubmitEvent = "quote_submit_success"
	EventQuoteSubmitFailure SubmitEvent = "quote_submit_failure"
	EventOrderCanceled      SubmitEvent = "order_canceled"
)

// String implements fmt.Stringer.
func (e SubmitEvent) String() string {
	return string(e)
}
