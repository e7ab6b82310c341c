package models

import "time"

// DataSourceStatus records when a data source was last imported.
type DataSourceStatus struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   *string   `json:"version"`
	Total     int64     `json:"total"`
}

// StatusResponse is the body of the API status endpoint.
type StatusResponse struct {
	Status  string             `json:"status"`
	Sources []DataSourceStatus `json:"sources"`
}
