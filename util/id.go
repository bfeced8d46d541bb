package util

import (
	"github.com/google/uuid"
	"strings"
)

func GenerateId() string {
	return strings.Replace(uuid.New().String(), "-", "", -1)[:12]
}
