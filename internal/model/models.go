package model

// CoreModels are migrated on every driver.
func CoreModels() []interface{} {
	return []interface{}{
		&User{},
		&Restaurant{},
		&Dish{},
		&Session{},
		&ChatTurn{},
	}
}
