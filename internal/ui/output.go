// Package ui prints colorized progress output for the command line
// importer.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgWhite)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Header prints a banner line centered in a rule of '=' characters.
func Header(text string) {
	rule := strings.Repeat("=", headerWidth)
	headerColor.Println(rule)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(rule)
}

// Step prints a numbered pipeline step, e.g. "[2/5] Parsing files".
func Step(current, total int, text string) {
	stepColor.Printf("[%d/%d] ", current, total)
	fmt.Println(text)
}

// Success prints a green checkmark line.
func Success(text string) {
	successColor.Printf("✓ %s\n", text)
}

// Info prints a plain informational line.
func Info(text string) {
	infoColor.Printf("  %s\n", text)
}

// Warning prints a yellow warning line.
func Warning(text string) {
	warnColor.Printf("! %s\n", text)
}

// Error prints a red error line.
func Error(text string) {
	errorColor.Printf("✗ %s\n", text)
}

// BlueText returns the text colored blue for inline use.
func BlueText(text string) string {
	return stepColor.Sprint(text)
}

// YellowText returns the text colored yellow for inline use.
func YellowText(text string) string {
	return warnColor.Sprint(text)
}

// center left-pads text so it sits in the middle of width columns. Text
// wider than the target is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}
