package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderType distinguishes counter sales from online orders
type OrderType int

const (
	OrderTypeInStore OrderType = 0
	OrderTypeOnline  OrderType = 1
)

func (t OrderType) String() string {
	names := [...]string{"in_store", "online"}
	if int(t) < 0 || int(t) >= len(names) {
		return "in_store"
	}
	return names[t]
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = OrderType(i)
		return nil
	}
	switch str {
	case "in_store":
		*t = OrderTypeInStore
	case "online":
		*t = OrderTypeOnline
	}
	return nil
}

func (t OrderType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *OrderType) Scan(value interface{}) error {
	if value == nil {
		*t = OrderTypeInStore
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = OrderType(v)
	case int:
		*t = OrderType(v)
	}
	return nil
}
