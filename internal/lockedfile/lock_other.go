//go:build !unix

package lockedfile

import "os"

// Without flock the lock degrades to advisory presence of the lock file.
// Concurrent orchestrator runs on these platforms are not serialized.
func lock(f *os.File) error { return nil }

func unlockFile(f *os.File) {}
