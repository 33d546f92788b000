package model

// Package model defines domain data structures used across the app: track
// metadata returned by the backend, the download session, and phase enums.
// Structures are designed for direct binding in the UI and explicit state
// transitions.
