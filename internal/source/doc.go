// Package source holds loaded scripts, byte spans and interned names.
package source
