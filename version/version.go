package version

// Version is the current scamguard release
const Version = "0.1.0"
