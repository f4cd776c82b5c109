package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"

	"github.com/google/uuid"
)

// UploadPrefix is the key namespace of user uploaded worksheets.
const UploadPrefix = "uploads"

// OwnerSegment derives a stable path segment from a user id so raw ids never appear in storage keys.
func OwnerSegment(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}

// UploadKey returns a fresh key uploads/<owner>/<uuid>_<name> for an already sanitized file name.
func UploadKey(userID, sanitizedName string) string {
	return path.Join(UploadPrefix, OwnerSegment(userID), uuid.NewString()+"_"+sanitizedName)
}
