// Package id provides unique identifier generation for split jobs.
package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generate creates a new unique job ID.
// Format: split-<timestamp>-<random>
// Example: split-1701432000-a1b2c3d4
func Generate() string {
	return fmt.Sprintf("split-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}
