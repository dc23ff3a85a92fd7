package tap

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"shelfspace-backend/internal/domain"
)

// SignatureHeader is the inbound webhook signature header name.
const SignatureHeader = "tap-signature"

// SignatureTolerance is the replay-attack window. Signatures whose
// timestamp is further than this from current time, in either direction,
// are rejected.
const SignatureTolerance = 300 * time.Second

// WebhookObject values the validator accepts.
var allowedObjects = map[string]bool{
	"charge":   true,
	"refund":   true,
	"transfer": true,
}

// WebhookEvent is a validated gateway event payload.
type WebhookEvent struct {
	ID        string
	Status    string
	Object    string
	Amount    float64
	HasAmount bool
	Metadata  map[string]string
}

// RentalRequestID returns the rental request reference carried in the
// event metadata, or 0 when absent or non-numeric.
func (e *WebhookEvent) RentalRequestID() int32 {
	raw, ok := e.Metadata["rentalRequestId"]
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0
	}
	return int32(id)
}

// VerifySignature authenticates a webhook payload against the structured
// signature header `t=<unix>,v1=<hex64>[,v1=<hex64>...]`. The timestamp
// must be within SignatureTolerance of now, and at least one v1 component
// must match the HMAC-SHA256 of the raw body under the shared secret,
// compared in constant time.
func VerifySignature(header string, body []byte, secret string, now time.Time) error {
	if header == "" {
		return domain.NewValidationError("tap-signature", "missing signature header")
	}

	var timestamp int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return domain.NewValidationError("tap-signature", "malformed timestamp")
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, value)
		}
	}

	if timestamp == 0 {
		return domain.NewValidationError("tap-signature", "missing timestamp component")
	}
	age := now.Sub(time.Unix(timestamp, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return domain.NewValidationError("tap-signature", "timestamp outside tolerance window")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if len(candidate) != hex.EncodedLen(sha256.Size) {
			continue
		}
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return domain.NewValidationError("tap-signature", "no signature component matched")
}

// ValidateEvent checks the shape of an untrusted payload independently of
// its signature: `id` and `status` must be strings, `amount` must be
// numeric if present, and `object` must be one of the known kinds if
// present. Returns a typed validation error with a human-readable reason.
func ValidateEvent(body []byte) (*WebhookEvent, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.NewValidationError("body", "payload is not a JSON object")
	}

	event := &WebhookEvent{Metadata: map[string]string{}}

	idRaw, ok := raw["id"]
	if !ok || json.Unmarshal(idRaw, &event.ID) != nil || event.ID == "" {
		return nil, domain.NewValidationError("id", "required string field")
	}

	statusRaw, ok := raw["status"]
	if !ok || json.Unmarshal(statusRaw, &event.Status) != nil || event.Status == "" {
		return nil, domain.NewValidationError("status", "required string field")
	}

	if amountRaw, ok := raw["amount"]; ok {
		if err := json.Unmarshal(amountRaw, &event.Amount); err != nil {
			return nil, domain.NewValidationError("amount", "must be numeric")
		}
		event.HasAmount = true
	}

	if objectRaw, ok := raw["object"]; ok {
		if json.Unmarshal(objectRaw, &event.Object) != nil {
			return nil, domain.NewValidationError("object", "must be a string")
		}
		if !allowedObjects[event.Object] {
			return nil, domain.NewValidationError("object", "unknown object kind: "+event.Object)
		}
	}

	if metaRaw, ok := raw["metadata"]; ok {
		// Metadata values arrive as strings or numbers depending on the
		// gateway SDK used by the sender; normalize both to strings.
		var meta map[string]any
		if json.Unmarshal(metaRaw, &meta) == nil {
			for k, v := range meta {
				switch val := v.(type) {
				case string:
					event.Metadata[k] = val
				case float64:
					// Integral values render without a fraction so a numeric
					// rental reference still parses; anything fractional is
					// preserved as-is rather than truncated.
					if val == math.Trunc(val) {
						event.Metadata[k] = strconv.FormatInt(int64(val), 10)
					} else {
						event.Metadata[k] = strconv.FormatFloat(val, 'f', -1, 64)
					}
				}
			}
		}
	}

	return event, nil
}
