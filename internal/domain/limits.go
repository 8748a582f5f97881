package domain

import "github.com/shopspring/decimal"

// Submission-time structural limits.
const (
	MaxRecipientDetailsLen = 1000
	MaxCommentLen          = 500
)

// Processing-time business thresholds. These are intentionally stricter than
// the submission-time checks: a record that passed creation validation can
// still fail here.
const MinRecipientDetailsLen = 10

// MaxPayoutAmount is the hard per-payout limit re-checked during processing.
var MaxPayoutAmount = decimal.NewFromInt(1_000_000)
