package event

// Version is the canvasreplay version reported by the CLI.
const Version = "0.1.0"
