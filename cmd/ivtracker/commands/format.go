package commands

import (
	"fmt"
	"strings"
)

// Common formatting helpers so every command prints the same way

const lineWidth = 59

// PrintHeader prints a titled block
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintKV prints an aligned key/value line inside a header block
func PrintKV(key string, value interface{}) {
	fmt.Printf("  %-10s: %v\n", key, value)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", lineWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", lineWidth))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintFailure prints a failure message
func PrintFailure(message string) {
	fmt.Printf("❌ %s\n", message)
}
