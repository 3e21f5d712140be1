package types

// Version is the canonical project version, shared by the CLI and the
// version command.
const Version = "0.2.0"
