package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header    lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	status    lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	danger    lipgloss.Style
	confirm   lipgloss.Style
	chip      lipgloss.Style
	cursor    lipgloss.Style
	folder    lipgloss.Style
	size      lipgloss.Style
	container lipgloss.Style
}

var ui = styles{
	container: lipgloss.NewStyle().Padding(0, 1),
	header:    lipgloss.NewStyle().Padding(0, 1),
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
	chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
	cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true),
	folder:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	size:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}
