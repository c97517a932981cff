package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	serverName    = "io.github.panbanda/reviewer"
	manifestImage = "ghcr.io/panbanda/reviewer"
	schemaURL     = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
)

// Manifest is the registry server.json document describing how to launch
// `reviewer mcp`.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	WebsiteURL  string      `json:"websiteUrl,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one installable image of the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the server reads at startup.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest builds server.json for a release. A leading "v" is
// dropped from version; an empty version becomes 0.0.0.
func GenerateManifest(version string) ([]byte, error) {
	version = strings.TrimPrefix(version, "v")
	if version == "" {
		version = "0.0.0"
	}

	pkg := Package{
		RegistryType:     "oci",
		Identifier:       manifestImage + ":" + version,
		PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
		EnvironmentVariables: []EnvVariable{{
			Name:        "REVIEWER_CONFIG",
			Description: "Path to a reviewer.toml, .yaml or .json file inside the container",
		}},
		Transport: Transport{Type: "stdio"},
	}

	return json.MarshalIndent(Manifest{
		Schema:      schemaURL,
		Name:        serverName,
		Title:       "Reviewer",
		Description: "Heuristic code review for security, bugs, performance and style issues",
		Version:     version,
		WebsiteURL:  "https://github.com/panbanda/reviewer",
		Repository:  &Repository{URL: "https://github.com/panbanda/reviewer", Source: "github"},
		Packages:    []Package{pkg},
	}, "", "  ")
}
