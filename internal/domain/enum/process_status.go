package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ProcessStatus tracks order fulfilment independently of payment
type ProcessStatus int

const (
	ProcessStatusPending   ProcessStatus = 0
	ProcessStatusPreparing ProcessStatus = 1
	ProcessStatusCompleted ProcessStatus = 2
	ProcessStatusDelivered ProcessStatus = 3
)

func (s ProcessStatus) String() string {
	names := [...]string{"pending", "preparing", "completed", "delivered"}
	if int(s) < 0 || int(s) >= len(names) {
		return "pending"
	}
	return names[s]
}

// Valid reports whether the value is one of the known statuses.
func (s ProcessStatus) Valid() bool {
	return s >= ProcessStatusPending && s <= ProcessStatusDelivered
}

func (s ProcessStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ProcessStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ProcessStatus(i)
		return nil
	}
	switch str {
	case "pending":
		*s = ProcessStatusPending
	case "preparing":
		*s = ProcessStatusPreparing
	case "completed":
		*s = ProcessStatusCompleted
	case "delivered":
		*s = ProcessStatusDelivered
	}
	return nil
}

func (s ProcessStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ProcessStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ProcessStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ProcessStatus(v)
	case int:
		*s = ProcessStatus(v)
	}
	return nil
}
