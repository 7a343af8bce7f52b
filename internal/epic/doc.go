// Package epic talks to the NASA EPIC image catalog: day listings through the
// JSON API, raw image bytes through the archive, and an optional SQLite cache
// of day listings.
package epic
