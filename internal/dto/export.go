package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString accepts a JSON string or number. Dashboard clients send amounts
// and ids either way; null and absent both decode to the empty string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// ExportRequest is the export body: optional columns, the listing filters and a sort
type ExportRequest struct {
	Columns   []string   `json:"columns"`
	Category  FlexString `json:"category"`
	Status    FlexString `json:"status"`
	UserID    FlexString `json:"user_id"`
	MinAmount FlexString `json:"minAmount"`
	MaxAmount FlexString `json:"maxAmount"`
	StartDate FlexString `json:"startDate"`
	EndDate   FlexString `json:"endDate"`
	Search    FlexString `json:"search"`
	SortBy    FlexString `json:"sortBy"`
	Order     FlexString `json:"order"`
}
