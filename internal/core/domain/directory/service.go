package directory

import (
	"encoding/json"
	"strings"
)

// Availability values for a ServiceRecord.
const (
	Unavailable = 0
	Available   = 1
)

// Lookup statuses. StatusFound is the only positive one; the remote store may
// return any other value, which is treated uniformly as "not found".
const (
	StatusFound        = 0
	StatusNoProvider   = 1
	StatusDetailAbsent = 2
	StatusNoMatch      = 3
	StatusUnreadable   = 4
)

const (
	MsgNotFound     = "No service provider found"
	MsgNoRemoteData = "No data retrieved from the remote store"
)

// ServiceRecord is the detail blob stored under the service id.
type ServiceRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Location     string `json:"location"`
	Cost         string `json:"cost"`
	Description  string `json:"description"`
	Availability int    `json:"availability"`
}

// Marshal serializes the record into its detail-blob form.
func (r *ServiceRecord) Marshal() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalRecord parses a detail blob.
func UnmarshalRecord(blob string) (*ServiceRecord, error) {
	var r ServiceRecord
	if err := json.Unmarshal([]byte(blob), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type RegisterServiceRequest struct {
	Name        string `json:"name" form:"name" query:"name"`
	Type        string `json:"type" form:"type" query:"type"`
	Location    string `json:"location" form:"location" query:"location"`
	Cost        string `json:"cost" form:"cost" query:"cost"`
	Description string `json:"description" form:"description" query:"description"`
}

// MissingFields lists the required fields that are empty or blank.
func (r *RegisterServiceRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", r.Name},
		{"type", r.Type},
		{"location", r.Location},
		{"cost", r.Cost},
		{"description", r.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// WriteStep is the outcome of one of the two registration writes.
type WriteStep struct {
	Key   string `json:"key"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RegistrationResult reports both writes independently. ServiceID is set even
// when neither write landed.
type RegistrationResult struct {
	ServiceID string    `json:"serviceId"`
	TypeIndex WriteStep `json:"typeIndex"`
	Detail    WriteStep `json:"detail"`
}

func (r *RegistrationResult) Complete() bool {
	return r.TypeIndex.OK && r.Detail.OK
}

// ProviderPayload is the status-tagged document returned by the remote
// provider query. Matching fields are passed through untouched.
type ProviderPayload map[string]any

// Status extracts the embedded status; ok is false when it is absent or not a number.
func (p ProviderPayload) Status() (int, bool) {
	switch v := p["status"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

type LookupRequest struct {
	Type     string `json:"type" query:"type"`
	Location string `json:"location" query:"location"`
}

// LookupResult is the response envelope of a provider lookup.
type LookupResult struct {
	Status int             `json:"status"`
	Data   ProviderPayload `json:"data,omitempty"`
	Error  string          `json:"error"`
}

func (r *LookupResult) Found() bool {
	return r.Status == StatusFound
}
