package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Идентификаторы сущностей во всех хранилищах - 24-символьный hex ObjectID,
// поэтому формат id на границе API не зависит от бэкенда.

// NewID выпускает новый идентификатор.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID проверяет формат идентификатора и приводит его к каноничному виду.
func ParseID(raw string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	return oid.Hex(), true
}
