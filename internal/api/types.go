package api

import "time"

// UserProfile is the display data for an authenticated principal, as
// returned by POST /auth/login and GET /auth/me.
type UserProfile struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
}

// File is a stored file as listed by GET /files.
type File struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	ContentType      string    `json:"contentType"`
	FileSize         int64     `json:"fileSize"`
	UploaderUsername string    `json:"uploaderUsername"`
	Company          string    `json:"company,omitempty"`
	UploadDate       time.Time `json:"uploadDate"`
}

// FileVersion is one entry of a file's version history.
type FileVersion struct {
	ID               string    `json:"id"`
	Version          int       `json:"version"`
	FileName         string    `json:"fileName"`
	ContentType      string    `json:"contentType"`
	FileSize         int64     `json:"fileSize"`
	UploaderUsername string    `json:"uploaderUsername"`
	UploadDate       time.Time `json:"uploadDate"`
}
