package models

import (
	"database/sql/driver"
	"encoding/json"
)

// StringArray 字符串数组类型，JSON 存储（渠道、图片、链接等）
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// IDList 主键ID集合类型，JSON 存储（商品、分类、标签、客户等目标集合）
type IDList []uint

// Value 实现 driver.Valuer 接口
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Contains 判断集合中是否包含指定ID
func (l IDList) Contains(id uint) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}

// IntList 整数集合类型，JSON 存储（允许的星期几等）
type IntList []int

// Value 实现 driver.Valuer 接口
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *IntList) Scan(value interface{}) error {
	if value == nil {
		*l = IntList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Contains 判断集合中是否包含指定整数
func (l IntList) Contains(n int) bool {
	for _, item := range l {
		if item == n {
			return true
		}
	}
	return false
}
