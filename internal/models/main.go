// Package models defines the core data structures for sessions, users,
// identification results, and history entries.
package models

import (
	"time"

	"github.com/leaflens/leaflens/internal/plantinfo"
)

// User represents the backend's view of an account, as echoed by /login.
type User struct {
	// Username is the display name chosen at signup.
	Username string `json:"username"`
	// Email is the account identifier.
	Email string `json:"email"`
	// IsAdmin grants access to the /admin endpoints.
	IsAdmin bool `json:"isAdmin"`
}

// Session holds the credentials re-sent with every authenticated request.
// The backend issues no tokens; the password itself is the bearer credential,
// which is why the session store seals it at rest.
type Session struct {
	// Email is the account identifier.
	Email string `json:"email"`
	// CredentialSecret is the password accepted by the backend as a login pair
	// with Email.
	CredentialSecret string `json:"credentialSecret"`
	// Username is the display name echoed by the backend on login.
	Username string `json:"username,omitempty"`
	// IsAdmin mirrors the backend's admin flag at login time.
	IsAdmin bool `json:"isAdmin"`
}

// IdentificationResult is the decoded response of one /identify call.
type IdentificationResult struct {
	// ID is the entry id minted by the backend for this identification.
	ID string `json:"id"`
	// PlantName is the predicted label.
	PlantName string `json:"plantName"`
	// Confidence is the model's score in [0,1].
	Confidence float64 `json:"confidence"`
	// Info is the plant metadata, already localized to the requested language.
	Info plantinfo.InfoMap `json:"info"`
	// TTS is a base64-encoded audio rendition of Info, when the backend
	// produced one.
	TTS string `json:"tts,omitempty"`
	// ImageURL points at the uploaded image as served back by the backend.
	ImageURL string `json:"imageUrl,omitempty"`
	// CreatedAt is set client-side when the response is received.
	CreatedAt time.Time `json:"-"`
}

// HistoryEntry is a persisted snapshot of one identification plus its current
// displayed info and audio, keyed by ID. Saves are full overwrites.
type HistoryEntry struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	PlantName  string            `json:"plantName"`
	Confidence float64           `json:"confidence"`
	ImageURL   string            `json:"imageUrl,omitempty"`
	// Timestamp is an RFC 3339 string; history is sorted on it lexically,
	// newest first.
	Timestamp string            `json:"timestamp"`
	Info      plantinfo.InfoMap `json:"info"`
	// TTS is the base64 audio snapshot matching Info, empty when no speech
	// was generated.
	TTS string `json:"tts,omitempty"`
}
