package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roelfdiedericks/kanjiclaw/internal/config"
	"github.com/roelfdiedericks/kanjiclaw/internal/kanjialive"
	. "github.com/roelfdiedericks/kanjiclaw/internal/logging"
	"github.com/roelfdiedericks/kanjiclaw/internal/radicals"
	"github.com/roelfdiedericks/kanjiclaw/internal/tools"
)

const version = "1.0.0"

const instructions = "MCP server for the Kanji Alive API - search and retrieve information about " +
	"1,235 Japanese kanji characters taught in Japanese elementary schools. " +
	"Provides tools for basic and advanced search, plus detailed kanji information " +
	"including readings, radicals, stroke order, and example words. A bundled " +
	"reference of the traditional Kangxi radicals is available as a resource."

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("kanjiclaw %s\n", version)
		return
	}

	// .env is optional; real deployments set RAPIDAPI_KEY directly.
	_ = godotenv.Load()

	// Initialize logging
	Init(DefaultConfig())

	L_info("kanjiclaw %s starting", version)

	// Load config. A missing or placeholder API key must stop the process
	// here, before any request is attempted.
	cfg, err := config.Load()
	if err != nil {
		L_fatal("configuration error: %v", err)
	}
	SetLevel(ParseLevel(cfg.Log.Level))

	// Radicals dataset loads at startup so a corrupt bundle fails fast
	// instead of surfacing on first resource read.
	data, err := radicals.Load()
	if err != nil {
		L_fatal("failed to load radicals data: %v", err)
	}

	client := kanjialive.New(cfg.API)

	s := server.NewMCPServer("Kanji Alive", version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	tools.Register(s, client)
	radicals.Register(s, data)

	L_info("kanjiclaw ready, serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		L_fatal("server error: %v", err)
	}
}
