package model

import "github.com/google/uuid"

// newID fills an empty string primary key with a random UUID
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All returns every model managed by the store, in dependency order for migrations
func All() []interface{} {
	return []interface{}{
		&School{},
		&Parent{},
		&Child{},
		&Fee{},
		&Payment{},
		&SuperUser{},
	}
}
