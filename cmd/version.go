package main

// version is reported by cobra's built-in --version flag (see
// rootCmd.Version in root.go).
var version = "0.1.0"
