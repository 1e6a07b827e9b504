package models

// StoredCollection reports whether one persisted collection currently has a blob in storage.
type StoredCollection struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Stored bool   `json:"stored"`
}

// StorageStatus lists the persisted collections and any unexpected keys found next to them.
type StorageStatus struct {
	Collections []StoredCollection `json:"collections"`
	OtherKeys   []string           `json:"other_keys"`
}
