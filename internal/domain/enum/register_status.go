package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RegisterStatus represents the lifecycle state of a cash register
type RegisterStatus int

const (
	RegisterStatusClosed RegisterStatus = 0
	RegisterStatusOpened RegisterStatus = 1
)

func (s RegisterStatus) String() string {
	names := [...]string{"closed", "opened"}
	if int(s) < 0 || int(s) >= len(names) {
		return "closed"
	}
	return names[s]
}

func (s RegisterStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RegisterStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RegisterStatus(i)
		return nil
	}
	switch str {
	case "closed":
		*s = RegisterStatusClosed
	case "opened":
		*s = RegisterStatusOpened
	}
	return nil
}

func (s RegisterStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RegisterStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RegisterStatusClosed
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RegisterStatus(v)
	case int:
		*s = RegisterStatus(v)
	}
	return nil
}
