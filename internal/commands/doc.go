// Package commands describes documentation command names: their kind,
// argument count, singleton group and what declarations they apply to.
package commands
