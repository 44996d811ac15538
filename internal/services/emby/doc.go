// Package emby implements the media server side of collection sync against
// the Emby REST API.
//
// The Library interface is the only surface the sync engine depends on:
// listing library movies, reading collections and their membership, and
// applying membership/overview writes. The HTTP client authenticates with an
// API key and scopes reads to the first administrator account, matching how
// Emby exposes library queries.
package emby
