package mock

// Version is the library version.
const Version = "0.10.1"
