package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// minorUnitExponent 金额保留的小数位，同时也是最小货币单位的换算位数
const minorUnitExponent = 2

// Money 统一金额类型（保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(minorUnitExponent)}
}

// NewMoneyFromMinorUnits 从最小货币单位（分）创建金额
func NewMoneyFromMinorUnits(units int64) Money {
	return Money{Decimal: decimal.New(units, -minorUnitExponent)}
}

// MinorUnits 转换为最小货币单位（分），多余小数四舍五入
func (m Money) MinorUnits() int64 {
	return m.Decimal.Shift(minorUnitExponent).Round(0).IntPart()
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(minorUnitExponent)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Decimal = d.Round(minorUnitExponent)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(minorUnitExponent).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(minorUnitExponent)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(minorUnitExponent).StringFixed(minorUnitExponent)
}
