package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents how much of an order has been paid for
type PaymentStatus int

const (
	PaymentStatusUnpaid        PaymentStatus = 0
	PaymentStatusPartiallyPaid PaymentStatus = 1
	PaymentStatusPaid          PaymentStatus = 2
	PaymentStatusVoid          PaymentStatus = 3
)

func (s PaymentStatus) String() string {
	names := [...]string{"unpaid", "partially_paid", "paid", "void"}
	if int(s) < 0 || int(s) >= len(names) {
		return "unpaid"
	}
	return names[s]
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	switch str {
	case "unpaid":
		*s = PaymentStatusUnpaid
	case "partially_paid":
		*s = PaymentStatusPartiallyPaid
	case "paid":
		*s = PaymentStatusPaid
	case "void":
		*s = PaymentStatusVoid
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
