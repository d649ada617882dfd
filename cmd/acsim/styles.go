package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nvandessel/acsim/internal/models"
)

// Color palette
var (
	colorPrimary      = lipgloss.Color("#2B8CBE") // cool blue
	colorPrimaryLight = lipgloss.Color("#7BCCC4")
	colorText         = lipgloss.Color("#F2F3F3")
	colorMuted        = lipgloss.Color("240")

	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
)

// Styles
var (
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Foreground(colorPrimaryLight).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)
)

// settingStyles color settings from cool to hot.
var settingStyles = map[models.Setting]lipgloss.Style{
	models.SettingLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4575B4")),
	models.SettingMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#FDAE61")),
	models.SettingHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D73027")).Bold(true),
}

// Icons
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "⚠"
	iconInfo    = "●"
)

// isTTY returns true if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printStyled prints a message with an icon, applying style only in TTY mode
func printStyled(w io.Writer, icon string, style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTTY() {
		fmt.Fprintf(w, "%s %s\n", style.Render(icon), msg)
	} else {
		fmt.Fprintf(w, "%s %s\n", icon, msg)
	}
}

func printSuccess(w io.Writer, format string, args ...any) {
	printStyled(w, iconSuccess, successStyle, format, args...)
}

func printError(w io.Writer, format string, args ...any) {
	printStyled(w, iconError, errorStyle, format, args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	printStyled(w, iconWarning, warningStyle, format, args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	printStyled(w, iconInfo, infoStyle, format, args...)
}

// printMuted prints muted/secondary text
func printMuted(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTTY() {
		fmt.Fprintln(w, mutedStyle.Render(msg))
	} else {
		fmt.Fprintln(w, msg)
	}
}

// printField prints an aligned "label: value" line.
func printField(w io.Writer, label string, format string, args ...any) {
	value := fmt.Sprintf(format, args...)
	label = fmt.Sprintf("  %-22s", label+":")
	if isTTY() {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	} else {
		fmt.Fprintf(w, "%s %s\n", label, value)
	}
}

// renderSetting colors a setting name in TTY mode.
func renderSetting(s models.Setting) string {
	style, ok := settingStyles[s]
	if !ok || !isTTY() {
		return string(s)
	}
	return style.Render(string(s))
}
