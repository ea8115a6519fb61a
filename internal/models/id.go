package models

import "github.com/google/uuid"

// newID 生成字符串主键
func newID() string {
	return uuid.NewString()
}

func ensureID(id *string) {
	if id != nil && *id == "" {
		*id = newID()
	}
}
