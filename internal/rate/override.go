package rate

import "github.com/nurpe/haulops-billing/internal/model"

// EffectiveQuote applies the operator's manual override when the job carries
// one. The computed breakdown is kept on the quote for comparison, but the
// total is the fixed override value and Overridden is set so billing reads
// suppress the breakdown. With no override the computed quote passes through
// untouched, so clearing the override reverts on the next resolution.
func EffectiveQuote(job *model.Job, computed model.PriceQuote) model.PriceQuote {
	if job.ManualOverrideTotal == nil {
		return computed
	}
	quote := computed
	quote.Total = job.ManualOverrideTotal.Round(2)
	quote.Overridden = true
	if job.ManualOverrideReason != nil {
		quote.OverrideReason = *job.ManualOverrideReason
	}
	return quote
}
