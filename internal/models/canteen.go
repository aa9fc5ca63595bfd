package models

// Canteen describes a canteen and its facility location.
type Canteen struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	LocationID   string `db:"location_id" json:"location_id"`
	LocationName string `db:"location_name" json:"location_name"`
}
