package web

import "embed"

// StaticFS embeds the single-page client.
//
//go:embed static/*
var StaticFS embed.FS
