package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var idCounter uint64

// GenerateID generates a unique ID from a timestamp and an atomic counter.
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateJobID generates a job ID with a timestamp prefix.
func GenerateJobID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("job-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("job-%s-%s", timestamp, hex.EncodeToString(b))
}
