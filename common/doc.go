// Package common holds small helpers shared across the Quillpress
// installer service: logger setup and build metadata.
package common
