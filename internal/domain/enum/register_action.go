package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RegisterAction identifies what a register history entry records
type RegisterAction int

const (
	RegisterActionOpening RegisterAction = 0
	RegisterActionCashIn  RegisterAction = 1
	RegisterActionCashOut RegisterAction = 2
	RegisterActionClosing RegisterAction = 3
)

func (a RegisterAction) String() string {
	names := [...]string{"opening", "cash_in", "cash_out", "closing"}
	if int(a) < 0 || int(a) >= len(names) {
		return "opening"
	}
	return names[a]
}

func (a RegisterAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a RegisterAction) Value() (driver.Value, error) {
	return int64(a), nil
}

func (a *RegisterAction) Scan(value interface{}) error {
	if value == nil {
		*a = RegisterActionOpening
		return nil
	}
	switch v := value.(type) {
	case int64:
		*a = RegisterAction(v)
	case int:
		*a = RegisterAction(v)
	}
	return nil
}

// TransactionType marks whether a history entry moved the balance up or down
type TransactionType int

const (
	TransactionTypeNone     TransactionType = 0
	TransactionTypePositive TransactionType = 1
	TransactionTypeNegative TransactionType = 2
)

func (t TransactionType) String() string {
	names := [...]string{"none", "positive", "negative"}
	if int(t) < 0 || int(t) >= len(names) {
		return "none"
	}
	return names[t]
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t TransactionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	if value == nil {
		*t = TransactionTypeNone
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TransactionType(v)
	case int:
		*t = TransactionType(v)
	}
	return nil
}
