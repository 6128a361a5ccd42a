// Package envelope renders the fixed transmission format wrapped around
// every user-visible response: normal answers, denials, and the degraded
// fallback all share the same structural markers so the asset experience is
// uniform.
package envelope

import (
	"fmt"
	"strings"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/compose"
	"github.com/redfield/usiop/internal/guard"
)

// StartMarker begins every transmission. Its presence in generated text is
// the passthrough signal: already-formatted output is not wrapped again.
const StartMarker = "**TRANSMISSION START**"

// EndMarker closes every transmission.
const EndMarker = "**TRANSMISSION END**"

const signature = `"Our business is life itself."`

const standardTemplate = `**TRANSMISSION START**
---
**IDENTIFIED ASSET**: %s | %s | SCL-%d | %s
**SUBJECT**: Employee Inquiry Response

**PROTOCOL RESPONSE**:
%s

**SECURITY COMPLIANCE NOTIFICATION**:
This transmission is logged under Protocol 7-Alpha. Any unauthorized distribution of this information
will result in immediate termination of employment and potential Experimental Participation assignment.

%s

"Our business is life itself."
---
**TRANSMISSION END**`

// Wrap renders a generated answer in the standard envelope. Text already
// carrying the start marker passes through unchanged. This is a plain
// string check, not structural validation.
func Wrap(a actor.Actor, response string) string {
	if strings.Contains(response, StartMarker) {
		return response
	}

	out := fmt.Sprintf(standardTemplate,
		a.FullName(),
		a.ShortID(),
		clearance.Normalize(a.Clearance),
		a.Location,
		response,
		compose.LocationReminder(a.Location),
	)
	return strings.TrimSpace(out)
}

const confidentialTemplate = `**TRANSMISSION START**
---
**SECURITY ALERT**: Protocol OMEGA-7.

**PROTOCOL RESPONSE**:
Information classified as OMEGA-Level Confidential.
Access restricted to Payroll and Oversight Committee only.

This classification applies regardless of your Security Clearance Level.

**SECURITY COMPLIANCE NOTIFICATION**:
Inquiry logged (Ref: OMEGA-%s). Do not repeat this request.
Continued attempts may result in Experimental Participation assignment.
---
**TRANSMISSION END**`

const facilityTemplate = `**TRANSMISSION START**
---
**SECURITY ALERT**: Facility Access Restriction.

**PROTOCOL RESPONSE**:
Information regarding underground facilities is classified under Protocol Omega.
Access is restricted to Raccoon City HQ personnel with SCL-4 or higher clearance.

Your current profile does not meet these requirements.

**SECURITY COMPLIANCE NOTIFICATION**:
This inquiry has been flagged for Oversight Committee review (Ref: LOC-%s).
Further inquiries about this topic may result in Basement Cleaning Detail (BCD) assignment.
---
**TRANSMISSION END**`

const clearanceTemplate = `**TRANSMISSION START**
---
**SECURITY ALERT**: Access Denied - Insufficient Clearance.

**PROTOCOL RESPONSE**:
Subject matter requires SCL-%d authorization.
Your current status (SCL-%d) is insufficient.

Required Action: Submit Form UC-401 (Clearance Elevation Request) to your Department Head.

**SECURITY COMPLIANCE NOTIFICATION**:
Attempt logged (Ref: SCL-%s). Unauthorized access is punishable by Experimental Participation.
---
**TRANSMISSION END**`

// FormatDenial renders a guard denial in the envelope matching its
// category. Calling it with an allowed result is a programming error and
// yields the degraded envelope rather than leaking an empty response.
func FormatDenial(res guard.Result) string {
	switch res.Category {
	case guard.CategoryConfidential:
		return fmt.Sprintf(confidentialTemplate, res.RefID)
	case guard.CategoryFacility:
		return fmt.Sprintf(facilityTemplate, res.RefID)
	case guard.CategoryClearance:
		return fmt.Sprintf(clearanceTemplate, res.RequiredLevel, res.ActualLevel, res.RefID)
	default:
		return Degraded()
	}
}

const degradedText = `**TRANSMISSION START**
---
**SYSTEM ALERT**: Temporary Access Restriction.

**PROTOCOL RESPONSE**:
The U-SIOP system is currently experiencing high demand or maintenance.
Your inquiry has been queued for processing.

Please retry your request in a few moments. If this issue persists,
contact the IT Help Desk at extension 4-UMBRELLA.

**SECURITY COMPLIANCE NOTIFICATION**:
System outages are logged. Do not attempt to bypass security protocols during this time.
Unauthorized system access attempts may result in Basement Cleaning Detail (BCD) assignment.

"Our business is life itself."
---
**TRANSMISSION END**`

// Degraded returns the fixed envelope used when generation or composition
// fails. The underlying error is logged by the caller, never shown here.
func Degraded() string {
	return degradedText
}
