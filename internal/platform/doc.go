package platform

// Package platform provides OS integration helpers: filename sanitization
// and derivation for saved media, safe writes into the downloads directory,
// and opening or revealing files in the system file manager.
