package compliance

import "fmt"

// highRiskReasonCodes are the claims that assert the account is not the
// client's. They require documentary evidence and an explicit client
// confirmation before a letter may use them.
var highRiskReasonCodes = map[string]bool{
	"identity_theft": true,
	"not_mine":       true,
	"never_late":     true,
	"mixed_file":     true,
}

// GateInput is one outgoing dispute's policy-relevant context.
type GateInput struct {
	ReasonCodes                   []string
	EvidenceDocumentIDs           []string
	ClientConfirmedOwnershipClaim bool
}

// Violation is one blocking policy failure on an outgoing dispute.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GateResult reports whether a dispute may proceed. Violations block letter
// generation; warnings do not.
type GateResult struct {
	Compliant  bool        `json:"compliant"`
	Violations []Violation `json:"violations,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// ValidateDispute checks reason codes against the evidence and confirmation
// requirements. It is pure: same input, same result.
func ValidateDispute(in GateInput) GateResult {
	var result GateResult

	if len(in.ReasonCodes) == 0 {
		result.Violations = append(result.Violations, Violation{
			Code:    "no_reason_codes",
			Message: "dispute has no reason codes",
		})
	}

	for _, code := range in.ReasonCodes {
		if highRiskReasonCodes[code] {
			if len(in.EvidenceDocumentIDs) == 0 {
				result.Violations = append(result.Violations, Violation{
					Code:    "missing_evidence",
					Message: fmt.Sprintf("high-risk reason code %q requires at least one evidence document", code),
				})
			}
			if !in.ClientConfirmedOwnershipClaim {
				result.Violations = append(result.Violations, Violation{
					Code:    "missing_client_confirmation",
					Message: fmt.Sprintf("high-risk reason code %q requires explicit client confirmation", code),
				})
			}
		}
		if code == "obsolete" {
			result.Warnings = append(result.Warnings,
				"obsolete claim should be cross-checked against the reporting-limit results before sending")
		}
	}

	result.Compliant = len(result.Violations) == 0
	return result
}
