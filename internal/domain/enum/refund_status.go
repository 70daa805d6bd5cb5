package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RefundStatus represents the processing state of a refund
type RefundStatus int

const (
	RefundStatusPending   RefundStatus = 0
	RefundStatusCompleted RefundStatus = 1
)

func (s RefundStatus) String() string {
	names := [...]string{"pending", "completed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "pending"
	}
	return names[s]
}

func (s RefundStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RefundStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RefundStatus(i)
		return nil
	}
	switch str {
	case "pending":
		*s = RefundStatusPending
	case "completed":
		*s = RefundStatusCompleted
	}
	return nil
}

func (s RefundStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RefundStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RefundStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RefundStatus(v)
	case int:
		*s = RefundStatus(v)
	}
	return nil
}
