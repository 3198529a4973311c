// Package models defines the value types shared across fusendo packages.
package models

import "time"

// FileMeta describes a text file in the app-data directory.
type FileMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location is a path the user saved to or picked through a dialog.
type Location struct {
	Command   string    `json:"command"`
	Path      string    `json:"path"`
	Dir       string    `json:"dir"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingDialog is a dialog waiting for the user.
type PendingDialog struct {
	ID       string    `json:"id"`
	Command  string    `json:"command"`
	OpenedAt time.Time `json:"opened_at"`
}
