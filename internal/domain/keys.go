package domain

// KeyPrefix namespaces every storage key. Overridden once from config at
// startup, before any repository is constructed.
var KeyPrefix = "ragdex:"
