// Package util contains small helpers used across the application
package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the length of every record ID
const IDLength = 16

// NewID generates a random record ID
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, IDLength)
}
