// Package config loads, normalizes, and validates transcriptsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as ASSEMBLYAI_API_KEY and NOTION_API_KEY. Key and
// token files named in the config are read here, once, so pipeline components
// only ever see resolved values.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
