package handlers

import "embed"

// AssetsFS embeds the widget and dashboard script and stylesheet served under /assets
//
//go:embed assets/*
var AssetsFS embed.FS
