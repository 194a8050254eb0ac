package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = fund documents/normalization, W2xxx = candidate discovery,
// W3xxx = remote optimizer, W4xxx = CSV import.
type WarningCode string

const (
	WarnFundDataIncomplete   WarningCode = "W1001" // document resolved with unknown performance fields
	WarnDiscoveryDegraded    WarningCode = "W2001" // composite query failed, coarser fallback used
	WarnNoAlternatives       WarningCode = "W2002" // every fallback exhausted, empty candidate set
	WarnOptimizerEquityFloor WarningCode = "W3001" // optimizer could not satisfy the equity floor
	WarnOptimizerNoHistory   WarningCode = "W3002" // optimizer fell back due to missing history
	WarnCSVRowSkipped        WarningCode = "W4001" // import row dropped (bad ISIN or value)
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
